// Package source defines the intelligence provider interface and its
// implementations: the offline libphonenumber parser, an offline pattern
// analyzer, and remote validation APIs.
package source

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tracelight/osint-cli/internal/model"
)

// ErrNotConfigured is returned by remote providers invoked without a
// credential. It is an expected condition, never retried; the aggregator
// records it as a failed result instead of surfacing it.
var ErrNotConfigured = eris.New("source: api key not configured")

// Provider is one intelligence source. Implementations are self-contained
// and know nothing about other sources; they never mutate shared state.
type Provider interface {
	// Name returns the provider's source tag.
	Name() model.Source
	// Available reports whether the provider can be queried at all
	// (remote providers without a credential report false).
	Available() bool
	// Remote reports whether Query performs network I/O.
	Remote() bool
	// Query investigates the identifier and returns the extracted fields
	// with a self-assessed confidence in [0,100].
	Query(ctx context.Context, identifier, region string) (model.Fields, float64, error)
}

// Registry holds the configured providers and the per-source rate limiters
// guarding remote dispatch. The limiter state is the only mutable structure
// shared across concurrent aggregations.
type Registry struct {
	mu        sync.RWMutex
	providers map[model.Source]Provider
	limiters  map[model.Source]*rate.Limiter

	// remoteRate applies to remote providers registered without an explicit
	// limiter.
	remoteRate rate.Limit
}

// NewRegistry creates an empty provider registry. Remote providers are
// limited to rps requests per second each; rps <= 0 disables limiting.
func NewRegistry(rps float64) *Registry {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Registry{
		providers:  make(map[model.Source]Provider),
		limiters:   make(map[model.Source]*rate.Limiter),
		remoteRate: limit,
	}
}

// Register adds a provider. Remote providers get a per-source rate limiter.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	if p.Remote() {
		r.limiters[p.Name()] = rate.NewLimiter(r.remoteRate, 1)
	}
}

// Get returns a provider by source tag, or nil if not registered.
func (r *Registry) Get(source model.Source) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[source]
}

// List returns all registered source tags in default dispatch order.
func (r *Registry) List() []model.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Source, 0, len(r.providers))
	for _, s := range model.AllSources {
		if _, ok := r.providers[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Wait blocks until the source's rate limiter admits a request. Sources
// without a limiter (offline providers) pass through immediately.
func (r *Registry) Wait(ctx context.Context, source model.Source) error {
	r.mu.RLock()
	lim := r.limiters[source]
	r.mu.RUnlock()
	if lim == nil {
		return nil
	}
	return lim.Wait(ctx)
}
