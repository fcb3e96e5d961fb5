package common

import (
	"crypto/rand"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Trim 0x or 0X prefix off the string.
func Trim0xPrefix(str string) string {
	s := strings.TrimPrefix(str, "0x")
	return strings.TrimPrefix(s, "0X")
}

// RandBytes32 generates [32]byte with random values
func RandBytes32() [32]byte {
	var b [32]byte
	n, err := rand.Read(b[:])
	if err != nil || n != len(b) {
		return [32]byte{}
	}
	return b
}

// RandEthAddress generates a random ethereum address (20 bytes).
func RandEthAddress() ethcommon.Address {
	b := RandBytes32()
	return ethcommon.BytesToAddress(b[12:])
}

// RandEthHash generates a random 32-byte hash.
func RandEthHash() ethcommon.Hash {
	return ethcommon.Hash(RandBytes32())
}
