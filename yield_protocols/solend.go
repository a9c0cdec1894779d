package yield_protocols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const solendReservesURL = "https://api.solend.fi/v1/reserves?scope=mainnet"

// Solend reads the collateral supply APY from the Solend reserves API.
type Solend struct {
	client *http.Client
	url    string
	symbol string
}

func NewSolend(symbol string) *Solend {
	return &Solend{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    solendReservesURL,
		symbol: symbol,
	}
}

func (s *Solend) Name() string {
	return "solend"
}

func (s *Solend) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("solend reserves returned status %d", res.StatusCode)
	}

	var payload struct {
		Reserves []struct {
			Symbol         string   `json:"symbol"`
			SupplyAPY      *float64 `json:"supplyApy"`
			SupplyInterest *float64 `json:"supplyInterest"`
		} `json:"reserves"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return 0, err
	}

	for _, r := range payload.Reserves {
		if !strings.EqualFold(r.Symbol, s.symbol) {
			continue
		}
		if r.SupplyAPY != nil {
			return *r.SupplyAPY, nil
		}
		if r.SupplyInterest != nil {
			return *r.SupplyInterest, nil
		}
	}

	return 0, nil
}
