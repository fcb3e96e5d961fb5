package ethsync

import "time"

const MinTickerDuration = 100 * time.Millisecond

type Config struct {
	// PollInterval is the wait between scan cycles.
	PollInterval time.Duration

	// Confirmations is the depth a block must be buried under before its
	// events are handed downstream. Trades latency for safety against
	// shallow reorgs.
	Confirmations uint64

	// MaxRangeSize caps the width of a single log query so the scanner
	// catches up incrementally after an outage instead of issuing one
	// unbounded query.
	MaxRangeSize uint64
}
