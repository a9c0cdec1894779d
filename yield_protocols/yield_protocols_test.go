package yield_protocols

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticSource struct {
	name string
	apy  float64
	err  error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) FetchRate(ctx context.Context) (float64, error) {
	return s.apy, s.err
}

func TestRegistryOrdersRatesDescending(t *testing.T) {
	r := NewRegistry(
		&staticSource{name: "low", apy: 0.01},
		&staticSource{name: "high", apy: 0.05},
		&staticSource{name: "mid", apy: 0.03},
	)

	rates := r.Rates(context.Background())
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(rates))
	}
	if rates[0].Protocol != "high" || rates[2].Protocol != "low" {
		t.Errorf("unexpected ordering: %v", rates)
	}

	best, ok := r.Best(context.Background())
	if !ok || best.Protocol != "high" {
		t.Errorf("expected best=high, got %v ok=%t", best, ok)
	}
}

func TestRegistryToleratesFailingSource(t *testing.T) {
	r := NewRegistry(
		&staticSource{name: "broken", err: fmt.Errorf("boom")},
		&staticSource{name: "working", apy: 0.02},
	)

	rates := r.Rates(context.Background())
	if len(rates) != 2 {
		t.Fatalf("expected both sources reported, got %d", len(rates))
	}
	for _, rate := range rates {
		if rate.Protocol == "broken" && rate.APY != 0 {
			t.Errorf("failing source must report zero, got %f", rate.APY)
		}
	}
}

func TestRegistryBestRequiresPositiveRate(t *testing.T) {
	r := NewRegistry(&staticSource{name: "flat", apy: 0})
	if _, ok := r.Best(context.Background()); ok {
		t.Error("expected no best rate when all rates are zero")
	}
}

func TestSolendParsesReserves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"reserves":[
			{"symbol":"USDC","supplyApy":0.04},
			{"symbol":"USDT","supplyApy":0.031}
		]}`)
	}))
	defer srv.Close()

	s := NewSolend("USDT")
	s.url = srv.URL

	apy, err := s.FetchRate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if apy != 0.031 {
		t.Errorf("expected 0.031, got %f", apy)
	}
}

func TestMarginfiParsesPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"symbol":"SOL","deposit_apy":0.02},
			{"symbol":"usdt","deposit_apy":0.025}
		]`)
	}))
	defer srv.Close()

	m := NewMarginfi("USDT")
	m.url = srv.URL

	apy, err := m.FetchRate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if apy != 0.025 {
		t.Errorf("expected 0.025, got %f", apy)
	}
}
