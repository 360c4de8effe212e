package setup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager tracks registered components and activates each at most once.
type Manager struct {
	mu         sync.RWMutex
	components map[string]*record
	inflight   map[string]*attempt

	publisher    EventPublisher
	setupTimeout time.Duration
	log          zerolog.Logger
}

// New returns an empty Manager configured by opts.
func New(opts ...Option) *Manager {
	m := &Manager{
		components: make(map[string]*record),
		inflight:   make(map[string]*attempt),
		publisher:  noopPublisher{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetEventPublisher replaces the lifecycle event publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

// Register adds a component. Names must be non-empty and unique.
func (m *Manager) Register(c Component) error {
	name := strings.TrimSpace(c.Name)
	if name == "" || name != c.Name {
		return fmt.Errorf("%w: name %q", ErrInvalidComponent, c.Name)
	}
	if c.Setup == nil {
		return fmt.Errorf("%w: %s has no setup func", ErrInvalidComponent, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.components[name]; ok {
		return fmt.Errorf("%w: %s", ErrComponentExists, name)
	}
	c.Dependencies = append([]string(nil), c.Dependencies...)
	m.components[name] = &record{comp: c, state: StateNotLoaded}
	return nil
}

// IsActive reports whether name has been set up successfully.
func (m *Manager) IsActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.components[name]
	return ok && r.state == StateLoaded
}

// Active returns the active component names, sorted.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name, r := range m.components {
		if r.state == StateLoaded {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Registered returns every registered component name, sorted.
func (m *Manager) Registered() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.components))
	for name := range m.components {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status returns a snapshot of every registered component, sorted by name.
func (m *Manager) Status() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.components))
	for name, r := range m.components {
		out = append(out, Status{
			Name:         name,
			Dependencies: append([]string(nil), r.comp.Dependencies...),
			State:        r.state,
			Err:          r.err,
			SetupTime:    r.setupTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	p.Publish(e)
}
