package etherman

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forge-cli/bridge-relay/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBridgeAddr = ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")

// encodeTokensLocked is the test-side inverse of EventDecoder.Decode.
func encodeTokensLocked(ev *BridgeEvent, emitter ethcommon.Address) types.Log {
	data := append(
		ethcommon.LeftPadBytes(ev.Amount.Bytes(), 32),
		ethcommon.LeftPadBytes(ev.DestinationChainID.Bytes(), 32)...,
	)
	return types.Log{
		Address: emitter,
		Topics: []ethcommon.Hash{
			TokensLockedSignatureHash,
			ethcommon.BytesToHash(ev.Token.Bytes()),
			ethcommon.BytesToHash(ev.Sender.Bytes()),
			ethcommon.BigToHash(ev.Nonce),
		},
		Data:        data,
		BlockNumber: ev.BlockNumber,
		TxHash:      ev.SourceTxHash,
		Index:       ev.LogIndex,
	}
}

func randBridgeEvent() *BridgeEvent {
	return &BridgeEvent{
		SourceTxHash:       common.RandEthHash(),
		BlockNumber:        1234,
		LogIndex:           7,
		Token:              common.RandEthAddress(),
		Sender:             common.RandEthAddress(),
		Amount:             big.NewInt(5_000_000),
		DestinationChainID: big.NewInt(137),
		Nonce:              big.NewInt(42),
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	ev := randBridgeEvent()

	decoded, err := decoder.Decode(encodeTokensLocked(ev, testBridgeAddr))
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)

	// Deterministic: same input, same output.
	again, err := decoder.Decode(encodeTokensLocked(ev, testBridgeAddr))
	require.NoError(t, err)
	assert.Equal(t, decoded, again)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	vlog := encodeTokensLocked(randBridgeEvent(), testBridgeAddr)
	vlog.Data = vlog.Data[:40]

	_, err := decoder.Decode(vlog)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, MalformedPayload, decodeErr.Kind)
}

func TestDecodeWrongContract(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	other := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	vlog := encodeTokensLocked(randBridgeEvent(), other)

	_, err := decoder.Decode(vlog)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, WrongContract, decodeErr.Kind)
}

func TestDecodeWrongTopic(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	vlog := encodeTokensLocked(randBridgeEvent(), testBridgeAddr)
	vlog.Topics[0] = common.RandEthHash()

	_, err := decoder.Decode(vlog)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, WrongTopic, decodeErr.Kind)
}

func TestDecodeMissingIndexedField(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	vlog := encodeTokensLocked(randBridgeEvent(), testBridgeAddr)
	vlog.Topics = vlog.Topics[:3] // drop the nonce topic

	_, err := decoder.Decode(vlog)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, MissingField, decodeErr.Kind)
}

func TestDecodeNoTopics(t *testing.T) {
	decoder := NewEventDecoder(testBridgeAddr)
	_, err := decoder.Decode(types.Log{Address: testBridgeAddr})

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, MissingField, decodeErr.Kind)
}
