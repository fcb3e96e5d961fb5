package etherman

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// URL is the URL of the source chain node (json rpc).
	URL string

	// BridgeContractAddress is the deployed bridge contract address.
	BridgeContractAddress common.Address

	// RequestTimeout bounds every single rpc call.
	RequestTimeout time.Duration

	// Retry controls in-cycle retries of transient rpc failures.
	Retry RetryConfig
}

func (cfg *Config) requestTimeout() time.Duration {
	if cfg.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return cfg.RequestTimeout
}
