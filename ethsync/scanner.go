package ethsync

import (
	"context"
	"sort"
	"time"

	"github.com/forge-cli/bridge-relay/etherman"
	logger "github.com/sirupsen/logrus"
)

// Scanner owns the scanning half of the poll cycle: decide what range is
// safe to read, fetch, decode, hand off in order, checkpoint. The checkpoint
// is the only mutable shared state and only ScanOnce writes it, so a single
// Scanner must never run concurrent cycles; Start enforces that by driving
// cycles from one ticker loop.
type Scanner struct {
	cfg       *Config
	ledger    LedgerClient
	decoder   EventDecoder
	store     CheckpointStore
	processor Processor

	lastScanned uint64
	seeded      bool
}

func New(
	ledger LedgerClient,
	decoder EventDecoder,
	store CheckpointStore,
	processor Processor,
	cfg *Config,
) (*Scanner, error) {
	lastScanned, ok, err := store.LoadCheckpoint()
	if err != nil {
		logger.Error("failed to load checkpoint when initializing scanner")
		return nil, err
	}

	return &Scanner{
		cfg:         cfg,
		ledger:      ledger,
		decoder:     decoder,
		store:       store,
		processor:   processor,
		lastScanned: lastScanned,
		seeded:      ok,
	}, nil
}

// LastScanned returns the in-memory checkpoint (what the store also holds
// after the last successful save).
func (s *Scanner) LastScanned() uint64 {
	return s.lastScanned
}

// ScanOnce runs one full cycle. All failures are local to the cycle: the
// checkpoint never advances past an unacknowledged event, and the next call
// retries from the same fromBlock.
func (s *Scanner) ScanOnce(ctx context.Context) ScanResult {
	head, err := s.ledger.GetHead(ctx)
	if err != nil {
		return ScanResult{Outcome: OutcomeFailed, FailKind: FailNodeUnreachable, Err: err}
	}

	// First run: seed the checkpoint at head - confirmations so scanning
	// begins just behind the confirmed tip.
	if !s.seeded {
		seed := uint64(0)
		if head > s.cfg.Confirmations {
			seed = head - s.cfg.Confirmations
		}
		if err := s.store.SaveCheckpoint(seed); err != nil {
			return ScanResult{Outcome: OutcomeFailed, FailKind: FailStoreFailure, Err: err}
		}
		s.lastScanned = seed
		s.seeded = true
		logger.WithFields(logger.Fields{
			"head": head,
			"seed": seed,
		}).Info("seeded scan checkpoint")
	}

	window := ComputeWindow(head, s.lastScanned, s.cfg.Confirmations, s.cfg.MaxRangeSize)
	if window.Empty() {
		return ScanResult{Outcome: OutcomeNoNewBlocks, Window: window}
	}

	logs, err := s.ledger.GetLogs(ctx, window.FromBlock, window.ToBlock)
	if err != nil {
		return ScanResult{Outcome: OutcomeFailed, Window: window, FailKind: FailNodeUnreachable, Err: err}
	}

	// Decode everything before dispatching anything: a malformed record
	// aborts the cycle rather than being skipped, since skipping could
	// permanently lose a transfer.
	events := make([]*etherman.BridgeEvent, 0, len(logs))
	for _, vlog := range logs {
		ev, err := s.decoder.Decode(vlog)
		if err != nil {
			return ScanResult{Outcome: OutcomeFailed, Window: window, FailKind: FailMalformedEvent, Err: err}
		}
		events = append(events, ev)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})

	for _, ev := range events {
		if err := s.processor.Process(ctx, ev); err != nil {
			// Advance to the highest block for which every event at or
			// below it was acknowledged: the block just before the
			// failing one.
			if cp := ev.BlockNumber - 1; ev.BlockNumber > 0 && cp > s.lastScanned {
				if saveErr := s.store.SaveCheckpoint(cp); saveErr != nil {
					logger.Errorf("failed to persist partial checkpoint %d: %v", cp, saveErr)
				} else {
					s.lastScanned = cp
				}
			}
			return ScanResult{
				Outcome:  OutcomeFailed,
				Window:   window,
				FailKind: FailDownstreamRejected,
				AtEvent:  ev,
				Err:      err,
			}
		}
	}

	// Persist before reporting success. A crash in between just replays the
	// window and downstream idempotency on nonce absorbs the duplicates.
	if err := s.store.SaveCheckpoint(window.ToBlock); err != nil {
		return ScanResult{Outcome: OutcomeFailed, Window: window, FailKind: FailStoreFailure, Err: err}
	}
	s.lastScanned = window.ToBlock

	return ScanResult{
		Outcome:       OutcomeProcessed,
		Window:        window,
		Count:         len(events),
		NewCheckpoint: window.ToBlock,
	}
}

// Start runs the poll loop until ctx is cancelled. Cycle failures are logged
// and the next tick retries; they never terminate the loop.
func (s *Scanner) Start(ctx context.Context) error {
	logger.Debug("starting bridge event scan loop")
	defer logger.Debug("stopping bridge event scan loop")

	interval := s.cfg.PollInterval
	if interval < MinTickerDuration {
		interval = MinTickerDuration
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := s.ScanOnce(ctx)
			switch res.Outcome {
			case OutcomeNoNewBlocks:
				logger.Debug("no new confirmed blocks")
			case OutcomeProcessed:
				logger.WithFields(logger.Fields{
					"window":     res.Window,
					"events":     res.Count,
					"checkpoint": res.NewCheckpoint,
				}).Info("scan cycle complete")
			case OutcomeFailed:
				fields := logger.Fields{
					"window": res.Window,
					"kind":   res.FailKind,
				}
				if res.AtEvent != nil {
					fields["tx"] = res.AtEvent.SourceTxHash
					fields["nonce"] = res.AtEvent.Nonce
				}
				logger.WithFields(fields).Errorf("scan cycle failed: %v", res.Err)
			}
		}
	}
}
