package ethsync

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forge-cli/bridge-relay/etherman"
)

// LedgerClient is the read-only slice of the source ledger the scanner
// needs. etherman.Etherman satisfies it.
type LedgerClient interface {
	GetHead(ctx context.Context) (uint64, error)
	GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
}

// EventDecoder turns a raw log into a BridgeEvent or a DecodeError.
type EventDecoder interface {
	Decode(vlog types.Log) (*etherman.BridgeEvent, error)
}

// CheckpointStore persists the last fully scanned block number.
// state.StateDB satisfies it.
type CheckpointStore interface {
	LoadCheckpoint() (uint64, bool, error)
	SaveCheckpoint(h uint64) error
}

// Processor receives decoded events in ascending (block, log index) order.
// Implementations must be idempotent keyed on the event nonce: the scanner
// only guarantees at-least-once delivery.
type Processor interface {
	Process(ctx context.Context, ev *etherman.BridgeEvent) error
}
