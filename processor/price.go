package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultPriceAPIURL = "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=usd"

// PriceSource is the external validation lookup consulted before a mint is
// simulated. Kept as an interface boundary: the relay core does not care
// where the quote comes from.
type PriceSource interface {
	EthUSD(ctx context.Context) (float64, error)
}

// GeckoPriceSource fetches the ETH/USD quote from the coingecko simple price
// api.
type GeckoPriceSource struct {
	url    string
	client *http.Client
}

func NewGeckoPriceSource(url string) *GeckoPriceSource {
	if url == "" {
		url = DefaultPriceAPIURL
	}
	return &GeckoPriceSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GeckoPriceSource) EthUSD(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price api returned status %d", resp.StatusCode)
	}

	var body struct {
		Ethereum struct {
			USD float64 `json:"usd"`
		} `json:"ethereum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("malformed price api response: %w", err)
	}

	return body.Ethereum.USD, nil
}
