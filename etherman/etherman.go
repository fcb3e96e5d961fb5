package etherman

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ethereumClient is the narrow read-only slice of the node api the relay
// needs. Kept private so tests can substitute a scripted fake.
type ethereumClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// Etherman is the read-only ledger client of the relay: head height, bounded
// log queries and tx inclusion lookups. It never signs or sends anything.
type Etherman struct {
	ethClient     ethereumClient
	bridgeAddress ethcommon.Address
	cfg           *Config
}

func NewEtherman(cfg *Config) (*Etherman, error) {
	ethClient, err := ethclient.Dial(cfg.URL)
	if err != nil {
		return nil, classify("dial", err)
	}

	return &Etherman{
		ethClient:     ethClient,
		bridgeAddress: cfg.BridgeContractAddress,
		cfg:           cfg,
	}, nil
}

func (etherman *Etherman) BridgeAddress() ethcommon.Address {
	return etherman.bridgeAddress
}

// GetHead returns the current chain head height.
func (etherman *Etherman) GetHead(ctx context.Context) (uint64, error) {
	var head uint64
	err := withRetry(ctx, "eth_blockNumber", etherman.cfg.Retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, etherman.cfg.requestTimeout())
		defer cancel()

		header, err := etherman.ethClient.HeaderByNumber(callCtx, nil)
		if err != nil {
			return classify("eth_blockNumber", err)
		}
		head = header.Number.Uint64()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return head, nil
}

// GetLogs fetches the bridge contract's TokensLocked logs in the inclusive
// range [fromBlock, toBlock], sorted ascending by (block number, log index).
// The caller must already have bounded the range width.
func (etherman *Etherman) GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	if toBlock < fromBlock {
		return nil, fmt.Errorf("invalid range [%d, %d]", fromBlock, toBlock)
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []ethcommon.Address{etherman.bridgeAddress},
		Topics:    [][]ethcommon.Hash{{TokensLockedSignatureHash}},
	}

	var logs []types.Log
	err := withRetry(ctx, "eth_getLogs", etherman.cfg.Retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, etherman.cfg.requestTimeout())
		defer cancel()

		var err error
		logs, err = etherman.ethClient.FilterLogs(callCtx, query)
		if err != nil {
			return classify("eth_getLogs", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Nodes return these ordered already; sort anyway since delivery order
	// downstream depends on it.
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	return logs, nil
}

// GetTxBlock returns the block number a transaction was included in.
func (etherman *Etherman) GetTxBlock(ctx context.Context, txHash ethcommon.Hash) (uint64, error) {
	var blockNum uint64
	err := withRetry(ctx, "eth_getTransactionReceipt", etherman.cfg.Retry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, etherman.cfg.requestTimeout())
		defer cancel()

		receipt, err := etherman.ethClient.TransactionReceipt(callCtx, txHash)
		if err != nil {
			return classify("eth_getTransactionReceipt", err)
		}
		blockNum = receipt.BlockNumber.Uint64()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return blockNum, nil
}
