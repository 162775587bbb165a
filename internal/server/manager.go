package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-memora/internal/metrics"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// DefaultFlowTTL is how long an untouched flow stays live.
const DefaultFlowTTL = 30 * time.Minute

// Stepper is the kind-independent surface of a running wizard flow.
type Stepper interface {
	ID() string
	Name() string
	Current() int
	Total() int
	Steps() []wizard.StepState
	ValidateCurrent() validation.Result
	Advance() (validation.Result, error)
	Retreat() error
	JumpTo(step int) error
	Submit(ctx context.Context) (gateway.Outcome, error)
	SubmitError() string
	Outcome() (gateway.Outcome, bool)
	Pending() bool
	Completed() bool
	Abandoned() bool
	Abandon()
	Done() <-chan struct{}
}

// Record edits and reads the kind-specific form behind a flow.
type Record interface {
	Patch(p FieldPatch) error
	AddFiles(files ...formdata.File) ([]formdata.IntakeError, error)
	RemoveFile(id string) error
	Snapshot() any
	Review() (string, error)
}

// Live is a flow held by the manager.
type Live struct {
	Stepper
	Record
}

// Factory starts a flow with the given id. token is the caller's session
// token, attached to the eventual submission.
type Factory func(id, token string) (*Live, error)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the idle time after which a flow is abandoned.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the clock used for idle tracking.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerRecorder sets the metrics recorder.
func WithManagerRecorder(recorder metrics.Recorder) ManagerOption {
	return func(m *Manager) {
		if recorder != nil {
			m.recorder = recorder
		}
	}
}

// Manager owns the live flows of the intake server and abandons the ones
// left idle past their TTL, releasing their previews.
type Manager struct {
	mu        sync.RWMutex
	factories map[string]Factory
	flows     map[string]*Live
	seen      map[string]time.Time

	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewManager constructs an empty manager.
func NewManager(options ...ManagerOption) *Manager {
	m := &Manager{
		factories: make(map[string]Factory),
		flows:     make(map[string]*Live),
		seen:      make(map[string]time.Time),
		ttl:       DefaultFlowTTL,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
		recorder:  metrics.Nop{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Register binds a flow kind to its factory.
func (m *Manager) Register(kind string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("server: factory is required")
	}
	name := strings.TrimSpace(kind)
	if name == "" {
		return fmt.Errorf("server: kind is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.factories[name]; exists {
		return fmt.Errorf("server: kind %q already registered", name)
	}
	m.factories[name] = factory
	return nil
}

// Kinds lists the registered flow kinds, sorted.
func (m *Manager) Kinds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kinds := make([]string, 0, len(m.factories))
	for kind := range m.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Start creates a flow of kind.
func (m *Manager) Start(kind, token string) (*Live, error) {
	m.mu.RLock()
	factory, ok := m.factories[kind]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	live, err := factory(uuid.NewString(), token)
	if err != nil {
		return nil, fmt.Errorf("server: start %s flow: %w", kind, err)
	}

	m.mu.Lock()
	m.flows[live.ID()] = live
	m.seen[live.ID()] = m.now()
	m.mu.Unlock()

	m.recorder.FlowStarted(kind)
	m.logger.Info("flow started", "kind", kind, "flow_id", live.ID())
	return live, nil
}

// Get returns a live flow and marks it as used.
func (m *Manager) Get(id string) (*Live, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live, ok := m.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}
	m.seen[id] = m.now()
	return live, nil
}

// Discard abandons a flow and forgets it. A submission still in flight is
// dropped and its caller gets wizard.ErrAbandoned.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	live, ok := m.flows[id]
	if ok {
		delete(m.flows, id)
		delete(m.seen, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}
	live.Abandon()
	return nil
}

// Len reports how many flows are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flows)
}

// Sweep abandons every flow idle for longer than the TTL. Flows with a
// submission in flight are kept until it settles.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	var expired []*Live
	m.mu.Lock()
	for id, live := range m.flows {
		if m.seen[id].After(cutoff) || live.Pending() {
			continue
		}
		expired = append(expired, live)
		delete(m.flows, id)
		delete(m.seen, id)
	}
	m.mu.Unlock()

	for _, live := range expired {
		if !live.Completed() {
			m.recorder.FlowEvicted(live.Name())
			m.logger.Info("flow evicted", "kind", live.Name(), "flow_id", live.ID())
		}
		live.Abandon()
	}
	return len(expired)
}

// Run sweeps at a fraction of the TTL until ctx is done, then abandons every
// remaining flow.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	flows := m.flows
	m.flows = make(map[string]*Live)
	m.seen = make(map[string]time.Time)
	m.mu.Unlock()

	for _, live := range flows {
		live.Abandon()
	}
}
