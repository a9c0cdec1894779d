package yield_protocols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const marginfiPoolsURL = "https://api.marginfi.com/v1/pools"

// Marginfi reads the collateral deposit APY from the marginfi pools API.
type Marginfi struct {
	client *http.Client
	url    string
	symbol string
}

func NewMarginfi(symbol string) *Marginfi {
	return &Marginfi{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    marginfiPoolsURL,
		symbol: symbol,
	}
}

func (m *Marginfi) Name() string {
	return "marginfi"
}

func (m *Marginfi) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return 0, err
	}

	res, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("marginfi pools returned status %d", res.StatusCode)
	}

	var pools []struct {
		Symbol     string   `json:"symbol"`
		DepositAPY *float64 `json:"deposit_apy"`
		SupplyAPY  *float64 `json:"supplyApy"`
	}
	if err := json.NewDecoder(res.Body).Decode(&pools); err != nil {
		return 0, err
	}

	for _, p := range pools {
		if !strings.EqualFold(p.Symbol, m.symbol) {
			continue
		}
		if p.DepositAPY != nil {
			return *p.DepositAPY, nil
		}
		if p.SupplyAPY != nil {
			return *p.SupplyAPY, nil
		}
	}

	return 0, nil
}
