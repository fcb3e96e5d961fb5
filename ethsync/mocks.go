package ethsync

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forge-cli/bridge-relay/common"
	"github.com/forge-cli/bridge-relay/etherman"
)

type logKey struct {
	Block uint64
	Index uint
}

// MockLedger serves a fixed head and canned logs, for scanner tests.
type MockLedger struct {
	Head    uint64
	HeadErr error
	Logs    []types.Log
	LogsErr error

	// LastQuery records the range of the most recent GetLogs call.
	LastQuery *ScanWindow
}

func (m *MockLedger) GetHead(ctx context.Context) (uint64, error) {
	if m.HeadErr != nil {
		return 0, m.HeadErr
	}
	return m.Head, nil
}

func (m *MockLedger) GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	m.LastQuery = &ScanWindow{FromBlock: fromBlock, ToBlock: toBlock}
	if m.LogsErr != nil {
		return nil, m.LogsErr
	}
	matched := []types.Log{}
	for _, vlog := range m.Logs {
		if vlog.BlockNumber >= fromBlock && vlog.BlockNumber <= toBlock {
			matched = append(matched, vlog)
		}
	}
	return matched, nil
}

// MockDecoder resolves logs to pre-registered events by (block, log index).
type MockDecoder struct {
	events map[logKey]*etherman.BridgeEvent
	failOn map[logKey]error
}

func NewMockDecoder() *MockDecoder {
	return &MockDecoder{
		events: map[logKey]*etherman.BridgeEvent{},
		failOn: map[logKey]error{},
	}
}

// Register creates a log at (block, index) with the given nonce and the
// matching decoded event.
func (m *MockDecoder) Register(block uint64, index uint, nonce int64) (types.Log, *etherman.BridgeEvent) {
	vlog := types.Log{
		BlockNumber: block,
		Index:       index,
		TxHash:      common.RandEthHash(),
	}
	ev := &etherman.BridgeEvent{
		SourceTxHash:       vlog.TxHash,
		BlockNumber:        block,
		LogIndex:           index,
		Sender:             common.RandEthAddress(),
		Amount:             big.NewInt(1000),
		DestinationChainID: big.NewInt(137),
		Nonce:              big.NewInt(nonce),
	}
	m.events[logKey{block, index}] = ev
	return vlog, ev
}

// FailOn makes decoding the log at (block, index) fail.
func (m *MockDecoder) FailOn(block uint64, index uint, err error) {
	m.failOn[logKey{block, index}] = err
}

func (m *MockDecoder) Decode(vlog types.Log) (*etherman.BridgeEvent, error) {
	key := logKey{vlog.BlockNumber, vlog.Index}
	if err, ok := m.failOn[key]; ok {
		return nil, err
	}
	ev, ok := m.events[key]
	if !ok {
		return nil, fmt.Errorf("no event registered at %+v", key)
	}
	return ev, nil
}

// MockProcessor tracks delivery order and seen nonces, and can be told to
// reject a given nonce.
type MockProcessor struct {
	mu sync.Mutex

	// Order is the sequence of (block, log index) pairs observed.
	Order []logKey
	// SeenNonces counts deliveries per nonce (decimal string).
	SeenNonces map[string]int
	// Minted holds nonces minted exactly once: redelivered nonces are
	// acknowledged without a second entry, like the real downstream.
	Minted map[string]bool
	// RejectNonce, when set, makes Process fail for that nonce.
	RejectNonce *big.Int
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		SeenNonces: map[string]int{},
		Minted:     map[string]bool{},
	}
}

func (m *MockProcessor) Process(ctx context.Context, ev *etherman.BridgeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RejectNonce != nil && m.RejectNonce.Cmp(ev.Nonce) == 0 {
		return fmt.Errorf("rejected nonce %v", ev.Nonce)
	}
	m.Order = append(m.Order, logKey{ev.BlockNumber, ev.LogIndex})
	m.SeenNonces[ev.Nonce.Text(10)]++
	m.Minted[ev.Nonce.Text(10)] = true
	return nil
}
