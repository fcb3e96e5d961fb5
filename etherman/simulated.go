package etherman

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SimClient is a scripted in-memory stand-in for a real node, used by tests.
// Heads advance when the test says so; logs live at fixed block numbers.
type SimClient struct {
	mu sync.Mutex

	head uint64
	logs []types.Log

	// Scripted failures: next HeadErrs/LogErrs calls fail with the given
	// error before succeeding again.
	HeadErrs []error
	LogErrs  []error
}

func NewSimClient(head uint64) *SimClient {
	return &SimClient{head: head}
}

// NewSimEtherman wires a SimClient behind a regular Etherman.
func NewSimEtherman(sim *SimClient, bridgeAddress ethcommon.Address, cfg *Config) *Etherman {
	if cfg == nil {
		cfg = &Config{Retry: RetryConfig{MaxAttempts: 1}}
	}
	cfg.BridgeContractAddress = bridgeAddress
	return &Etherman{
		ethClient:     sim,
		bridgeAddress: bridgeAddress,
		cfg:           cfg,
	}
}

func (s *SimClient) SetHead(head uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = head
}

func (s *SimClient) AddLog(vlog types.Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, vlog)
}

func (s *SimClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.HeadErrs) > 0 {
		err := s.HeadErrs[0]
		s.HeadErrs = s.HeadErrs[1:]
		return nil, err
	}
	n := s.head
	if number != nil {
		n = number.Uint64()
	}
	return &types.Header{Number: new(big.Int).SetUint64(n)}, nil
}

func (s *SimClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.LogErrs) > 0 {
		err := s.LogErrs[0]
		s.LogErrs = s.LogErrs[1:]
		return nil, err
	}

	from := q.FromBlock.Uint64()
	to := q.ToBlock.Uint64()

	matched := []types.Log{}
	for _, vlog := range s.logs {
		if vlog.BlockNumber < from || vlog.BlockNumber > to {
			continue
		}
		if !matchAddress(q.Addresses, vlog.Address) {
			continue
		}
		if !matchTopic0(q.Topics, vlog) {
			continue
		}
		matched = append(matched, vlog)
	}
	return matched, nil
}

func (s *SimClient) TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vlog := range s.logs {
		if vlog.TxHash == txHash {
			return &types.Receipt{
				TxHash:      txHash,
				BlockNumber: new(big.Int).SetUint64(vlog.BlockNumber),
			}, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func matchAddress(addrs []ethcommon.Address, addr ethcommon.Address) bool {
	if len(addrs) == 0 {
		return true
	}
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}

func matchTopic0(topics [][]ethcommon.Hash, vlog types.Log) bool {
	if len(topics) == 0 || len(topics[0]) == 0 {
		return true
	}
	if len(vlog.Topics) == 0 {
		return false
	}
	for _, t := range topics[0] {
		if vlog.Topics[0] == t {
			return true
		}
	}
	return false
}
