package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is the observed health of one upstream dependency.
type ProviderHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// IsHealthy returns true if the circuit is closed.
func (h *ProviderHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the circuit is half-open.
func (h *ProviderHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// Registry tracks upstream clients and the outcome of their last calls.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*registeredProvider
	now       func() time.Time
}

type registeredProvider struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*registeredProvider),
		now:       time.Now,
	}
}

// Register adds a client under its name.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[client.Name()] = &registeredProvider{client: client}
}

// RecordSuccess records a successful call.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := r.now()
		p.lastSuccessAt = &now
	}
}

// RecordFailure records a failed call.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := r.now()
		p.lastFailureAt = &now
		if err != nil {
			p.lastError = err.Error()
		}
	}
}

// GetHealth returns the health of one provider, or nil if unknown.
func (r *Registry) GetHealth(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil
	}
	return p.health(name)
}

// GetAllHealth returns the health of every provider sorted by name.
func (r *Registry) GetAllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(r.providers))
	for name, p := range r.providers {
		health = append(health, p.health(name))
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}

func (p *registeredProvider) health(name string) *ProviderHealth {
	return &ProviderHealth{
		Name:          name,
		CircuitState:  p.client.CircuitBreakerState(),
		Counts:        p.client.CircuitBreakerCounts(),
		LastSuccessAt: p.lastSuccessAt,
		LastFailureAt: p.lastFailureAt,
		LastError:     p.lastError,
	}
}
