package etherman

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TokensLocked(address indexed token, address indexed sender, uint256 amount,
// uint256 destinationChainId, uint256 nonce indexed)
var TokensLockedSignatureHash = crypto.Keccak256Hash(
	[]byte("TokensLocked(address,address,uint256,uint256,uint256)"))

// topics: [signature, token, sender, nonce]; data: amount ++ destinationChainId
const (
	tokensLockedTopicCount = 4
	tokensLockedDataLen    = 64
)

type DecodeErrorKind string

const (
	WrongTopic       DecodeErrorKind = "wrong_topic"
	WrongContract    DecodeErrorKind = "wrong_contract"
	MalformedPayload DecodeErrorKind = "malformed_payload"
	MissingField     DecodeErrorKind = "missing_field"
)

type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed (%s): %s", e.Kind, e.Detail)
}

// BridgeEvent is a decoded TokensLocked log. Nonce is unique per bridge
// contract and is the downstream idempotency key; (SourceTxHash, LogIndex)
// uniquely identifies the log itself.
type BridgeEvent struct {
	SourceTxHash       ethcommon.Hash
	BlockNumber        uint64
	LogIndex           uint
	Token              ethcommon.Address
	Sender             ethcommon.Address
	Amount             *big.Int // base units, no scaling
	DestinationChainID *big.Int
	Nonce              *big.Int
}

func (ev *BridgeEvent) String() string {
	return fmt.Sprintf("TokensLocked{tx=%s idx=%d blk=%d sender=%s amount=%v nonce=%v}",
		ev.SourceTxHash, ev.LogIndex, ev.BlockNumber, ev.Sender, ev.Amount, ev.Nonce)
}

// EventDecoder validates a raw log's shape and turns it into a BridgeEvent.
// It fails closed: any shape mismatch yields a DecodeError, never a partial
// event. Decoding is deterministic.
type EventDecoder struct {
	bridgeAddress ethcommon.Address
}

func NewEventDecoder(bridgeAddress ethcommon.Address) *EventDecoder {
	return &EventDecoder{bridgeAddress: bridgeAddress}
}

func (d *EventDecoder) Decode(vlog types.Log) (*BridgeEvent, error) {
	if vlog.Address != d.bridgeAddress {
		return nil, &DecodeError{
			Kind:   WrongContract,
			Detail: fmt.Sprintf("log emitted by %s, want %s", vlog.Address, d.bridgeAddress),
		}
	}
	if len(vlog.Topics) == 0 {
		return nil, &DecodeError{Kind: MissingField, Detail: "log has no topics"}
	}
	if vlog.Topics[0] != TokensLockedSignatureHash {
		return nil, &DecodeError{
			Kind:   WrongTopic,
			Detail: fmt.Sprintf("topic0 %s is not TokensLocked", vlog.Topics[0]),
		}
	}
	if len(vlog.Topics) != tokensLockedTopicCount {
		return nil, &DecodeError{
			Kind:   MissingField,
			Detail: fmt.Sprintf("got %d topics, want %d", len(vlog.Topics), tokensLockedTopicCount),
		}
	}
	if len(vlog.Data) != tokensLockedDataLen {
		return nil, &DecodeError{
			Kind:   MalformedPayload,
			Detail: fmt.Sprintf("got %d data bytes, want %d", len(vlog.Data), tokensLockedDataLen),
		}
	}

	return &BridgeEvent{
		SourceTxHash:       vlog.TxHash,
		BlockNumber:        vlog.BlockNumber,
		LogIndex:           vlog.Index,
		Token:              ethcommon.BytesToAddress(vlog.Topics[1].Bytes()),
		Sender:             ethcommon.BytesToAddress(vlog.Topics[2].Bytes()),
		Amount:             new(big.Int).SetBytes(vlog.Data[0:32]),
		DestinationChainID: new(big.Int).SetBytes(vlog.Data[32:64]),
		Nonce:              new(big.Int).SetBytes(vlog.Topics[3].Bytes()),
	}, nil
}
