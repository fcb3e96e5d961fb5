package etherman

import (
	"context"
	"errors"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEtherman(sim *SimClient, attempts int) *Etherman {
	return NewSimEtherman(sim, testBridgeAddr, &Config{
		RequestTimeout: time.Second,
		Retry: RetryConfig{
			MaxAttempts:     attempts,
			InitialInterval: time.Millisecond,
			MaxInterval:     4 * time.Millisecond,
		},
	})
}

func TestGetHead(t *testing.T) {
	sim := NewSimClient(123)
	em := newTestEtherman(sim, 1)

	head, err := em.GetHead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123), head)

	sim.SetHead(456)
	head, err = em.GetHead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(456), head)
}

func TestGetHeadRetriesTransientFailures(t *testing.T) {
	sim := NewSimClient(99)
	sim.HeadErrs = []error{
		errors.New("connection refused"),
		errors.New("connection refused"),
	}
	em := newTestEtherman(sim, 3)

	head, err := em.GetHead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(99), head)
}

func TestGetHeadSurfacesExhaustedRetries(t *testing.T) {
	sim := NewSimClient(99)
	sim.HeadErrs = []error{
		errors.New("connection refused"),
		errors.New("connection refused"),
	}
	em := newTestEtherman(sim, 2)

	_, err := em.GetHead(context.Background())
	assert.ErrorIs(t, err, ErrNodeUnreachable)
}

func TestGetLogsFiltersAndSorts(t *testing.T) {
	sim := NewSimClient(100)

	// Matching logs, added out of order.
	evA := randBridgeEvent()
	evA.BlockNumber, evA.LogIndex = 12, 1
	evB := randBridgeEvent()
	evB.BlockNumber, evB.LogIndex = 10, 0
	evC := randBridgeEvent()
	evC.BlockNumber, evC.LogIndex = 12, 0
	sim.AddLog(encodeTokensLocked(evA, testBridgeAddr))
	sim.AddLog(encodeTokensLocked(evB, testBridgeAddr))
	sim.AddLog(encodeTokensLocked(evC, testBridgeAddr))

	// Noise: wrong contract, wrong topic, out of range.
	other := randBridgeEvent()
	other.BlockNumber = 11
	sim.AddLog(encodeTokensLocked(other, ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")))
	noise := encodeTokensLocked(randBridgeEvent(), testBridgeAddr)
	noise.BlockNumber = 11
	noise.Topics[0] = noise.Topics[1]
	sim.AddLog(noise)
	outside := randBridgeEvent()
	outside.BlockNumber = 50
	sim.AddLog(encodeTokensLocked(outside, testBridgeAddr))

	em := newTestEtherman(sim, 1)
	logs, err := em.GetLogs(context.Background(), 10, 20)
	require.NoError(t, err)

	require.Len(t, logs, 3)
	assert.Equal(t, []types.Log{
		encodeTokensLocked(evB, testBridgeAddr),
		encodeTokensLocked(evC, testBridgeAddr),
		encodeTokensLocked(evA, testBridgeAddr),
	}, logs)
}

func TestGetLogsRejectsInvertedRange(t *testing.T) {
	em := newTestEtherman(NewSimClient(100), 1)
	_, err := em.GetLogs(context.Background(), 20, 10)
	assert.Error(t, err)
}

func TestGetLogsRangeTooLargeNotRetried(t *testing.T) {
	sim := NewSimClient(100)
	sim.LogErrs = []error{
		errors.New("block range too large"),
		errors.New("block range too large"),
	}
	em := newTestEtherman(sim, 3)

	_, err := em.GetLogs(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrRangeTooLarge)
	assert.Len(t, sim.LogErrs, 1, "must not retry a non-transient error")
}

func TestGetTxBlock(t *testing.T) {
	sim := NewSimClient(100)
	ev := randBridgeEvent()
	ev.BlockNumber = 77
	sim.AddLog(encodeTokensLocked(ev, testBridgeAddr))

	em := newTestEtherman(sim, 1)
	blk, err := em.GetTxBlock(context.Background(), ev.SourceTxHash)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), blk)
}
