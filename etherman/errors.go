package etherman

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNodeUnreachable = errors.New("node unreachable")
	ErrTimeout         = errors.New("request timed out")
	ErrRangeTooLarge   = errors.New("log query range too large")
)

// classify maps a raw rpc error to one of the typed errors above, keeping the
// original message for diagnosis.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	case isRangeTooLarge(err):
		return fmt.Errorf("%s: %w: %v", op, ErrRangeTooLarge, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrNodeUnreachable, err)
	}
}

// IsTransient reports whether the cycle may retry the call. A too-large range
// is a caller bug (the window must already be bounded) and is not retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNodeUnreachable) || errors.Is(err, ErrTimeout)
}

func isRangeTooLarge(err error) bool {
	if errors.Is(err, ErrRangeTooLarge) {
		return true
	}
	// Node implementations disagree on the error shape for oversized
	// eth_getLogs queries; match the common phrasings.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "block range") ||
		strings.Contains(msg, "query returned more than")
}
