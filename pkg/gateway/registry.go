package gateway

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry routes submissions to a gateway per flow, falling back to an
// optional default. It satisfies Gateway itself.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
	fallback Gateway
}

var _ Gateway = (*Registry)(nil)

// NewRegistry creates an empty registry with an optional fallback gateway.
func NewRegistry(fallback Gateway) *Registry {
	return &Registry{
		gateways: make(map[string]Gateway),
		fallback: fallback,
	}
}

// Register binds gw to flow. Duplicate flows return an error.
func (r *Registry) Register(flow string, gw Gateway) error {
	if gw == nil {
		return fmt.Errorf("gateway: gateway is required")
	}
	name := strings.TrimSpace(flow)
	if name == "" {
		return fmt.Errorf("gateway: flow name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.gateways[name]; exists {
		return fmt.Errorf("gateway: flow %q already registered", name)
	}
	r.gateways[name] = gw
	return nil
}

// Get returns the gateway for flow, or the fallback.
func (r *Registry) Get(flow string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if gw, ok := r.gateways[flow]; ok {
		return gw, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("gateway: flow %q not registered", flow)
}

// List returns the registered flow names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Submit dispatches to the gateway registered for submission.Flow.
func (r *Registry) Submit(ctx context.Context, submission Submission) (Outcome, error) {
	gw, err := r.Get(submission.Flow)
	if err != nil {
		return Outcome{}, err
	}
	return gw.Submit(ctx, submission)
}
