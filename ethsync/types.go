package ethsync

import (
	"fmt"

	"github.com/forge-cli/bridge-relay/etherman"
)

// ScanWindow is the inclusive block range one cycle reads. Empty (nothing
// confirmed yet) iff ToBlock < FromBlock.
type ScanWindow struct {
	FromBlock uint64
	ToBlock   uint64
}

func (w ScanWindow) Empty() bool {
	return w.ToBlock < w.FromBlock
}

func (w ScanWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.FromBlock, w.ToBlock)
}

// ComputeWindow decides what range is safe to read. Pure, no I/O.
//
// fromBlock = lastScanned + 1; toBlock = min(head - confirmations,
// fromBlock + maxRangeSize - 1). Never includes a block above
// head - confirmations.
func ComputeWindow(head, lastScanned, confirmations, maxRangeSize uint64) ScanWindow {
	fromBlock := lastScanned + 1

	if head < confirmations {
		return ScanWindow{FromBlock: fromBlock, ToBlock: fromBlock - 1}
	}

	toBlock := head - confirmations
	if maxRangeSize > 0 && toBlock >= fromBlock {
		if capped := fromBlock + maxRangeSize - 1; capped < toBlock {
			toBlock = capped
		}
	}
	if toBlock < fromBlock {
		toBlock = fromBlock - 1
	}

	return ScanWindow{FromBlock: fromBlock, ToBlock: toBlock}
}

type Outcome string

const (
	// OutcomeNoNewBlocks is the normal steady state: nothing confirmed yet.
	OutcomeNoNewBlocks Outcome = "no_new_blocks"
	OutcomeProcessed   Outcome = "processed"
	OutcomeFailed      Outcome = "failed"
)

type FailureKind string

const (
	FailNodeUnreachable    FailureKind = "node_unreachable"
	FailMalformedEvent     FailureKind = "malformed_event"
	FailDownstreamRejected FailureKind = "downstream_rejected"
	FailStoreFailure       FailureKind = "store_failure"
)

// ScanResult reports one cycle's outcome.
type ScanResult struct {
	Outcome Outcome
	Window  ScanWindow

	// Set when Outcome == OutcomeProcessed.
	Count         int
	NewCheckpoint uint64

	// Set when Outcome == OutcomeFailed.
	FailKind FailureKind
	AtEvent  *etherman.BridgeEvent
	Err      error
}
