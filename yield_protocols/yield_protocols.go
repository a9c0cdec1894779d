// Package yield_protocols aggregates supply rates from external lending
// protocols so the API can compare venues for idle collateral.
package yield_protocols

import (
	"context"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// RateSource reads the current deposit APY for the collateral asset from
// one external protocol.
type RateSource interface {
	Name() string
	FetchRate(ctx context.Context) (float64, error)
}

type Rate struct {
	Protocol string  `json:"protocol"`
	APY      float64 `json:"apy"`
}

type Registry struct {
	mu      sync.RWMutex
	sources []RateSource
}

func NewRegistry(sources ...RateSource) *Registry {
	return &Registry{sources: sources}
}

func (r *Registry) Register(source RateSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

// Rates fetches all registered sources. A failing source is logged and
// reported with a zero rate rather than failing the whole read.
func (r *Registry) Rates(ctx context.Context) []Rate {
	r.mu.RLock()
	sources := make([]RateSource, len(r.sources))
	copy(sources, r.sources)
	r.mu.RUnlock()

	rates := make([]Rate, 0, len(sources))
	for _, source := range sources {
		apy, err := source.FetchRate(ctx)
		if err != nil {
			log.
				WithFields(log.Fields{"error": err, "protocol": source.Name()}).
				Warn("Could not fetch protocol rate")
			apy = 0
		}
		rates = append(rates, Rate{Protocol: source.Name(), APY: apy})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].APY > rates[j].APY })
	return rates
}

// Best returns the highest-yielding protocol, or false when no source
// reports a positive rate.
func (r *Registry) Best(ctx context.Context) (Rate, bool) {
	rates := r.Rates(ctx)
	if len(rates) == 0 || rates[0].APY <= 0 {
		return Rate{}, false
	}
	return rates[0], true
}
