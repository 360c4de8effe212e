package setup

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"hubd/internal/config"
	"hubd/internal/metrics"
)

type chainKey struct{}

// activationChain returns the components whose setup ctx descends from.
func activationChain(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

func withChain(ctx context.Context, name string) context.Context {
	chain := activationChain(ctx)
	next := make([]string, 0, len(chain)+1)
	next = append(next, chain...)
	next = append(next, name)
	return context.WithValue(ctx, chainKey{}, next)
}

// Activate ensures name is active, setting it (and its dependencies) up when
// it is not. It returns true if the component is active afterwards.
func (m *Manager) Activate(ctx context.Context, name string, cfg *config.Config) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	r, ok := m.components[name]
	if !ok {
		m.mu.Unlock()
		m.log.Error().Str("component", name).Msg("setup event=unknown_component")
		m.publish(Event{Name: "setup_failed", Component: name, Fields: map[string]any{"error": "unknown component"}})
		return false
	}
	if r.state == StateLoaded {
		m.mu.Unlock()
		return true
	}
	if chain := activationChain(ctx); slices.Contains(chain, name) {
		m.mu.Unlock()
		m.log.Error().Str("component", name).Strs("chain", chain).
			Msg("setup event=activation_cycle: component awaited from its own setup; schedule the call instead")
		return false
	}
	if a, ok := m.inflight[name]; ok {
		m.mu.Unlock()
		select {
		case <-a.done:
			return a.ok
		case <-ctx.Done():
			return false
		}
	}
	a := &attempt{done: make(chan struct{})}
	m.inflight[name] = a
	r.state = StateSetup
	r.err = ""
	comp := r.comp
	m.mu.Unlock()

	// The attempt is shared by every waiter, so it runs detached from the
	// caller's cancellation. Only WithSetupTimeout bounds it.
	go m.attempt(withChain(context.WithoutCancel(ctx), name), r, comp, cfg, a)
	select {
	case <-a.done:
		return a.ok
	case <-ctx.Done():
		return false
	}
}

func (m *Manager) attempt(ctx context.Context, r *record, comp Component, cfg *config.Config, a *attempt) {
	name := comp.Name
	start := time.Now()
	err := m.run(ctx, comp, cfg)
	dur := time.Since(start)

	m.mu.Lock()
	delete(m.inflight, name)
	r.setupTime = dur
	if err != nil {
		r.state = StateFailed
		r.err = err.Error()
	} else {
		r.state = StateLoaded
	}
	a.ok = err == nil
	m.mu.Unlock()

	metrics.Activation(name, a.ok, dur)
	if err != nil {
		m.log.Error().Err(err).Str("component", name).Dur("dur", dur).Msg("setup event=setup_failed")
		m.publish(Event{Name: "setup_failed", Component: name, Fields: map[string]any{"error": err.Error()}})
	} else {
		m.log.Info().Str("component", name).Dur("dur", dur).Msg("setup event=setup_ready")
		m.publish(Event{Name: "setup_ready", Component: name, Fields: map[string]any{"dur_ms": int(dur / time.Millisecond)}})
	}
	close(a.done)
}

func (m *Manager) run(ctx context.Context, comp Component, cfg *config.Config) (err error) {
	m.log.Debug().Str("component", comp.Name).Strs("deps", comp.Dependencies).Msg("setup event=setup_start")
	m.publish(Event{Name: "setup_start", Component: comp.Name})

	if len(comp.Dependencies) > 0 {
		// Siblings keep running when one dependency fails.
		var g errgroup.Group
		for _, dep := range comp.Dependencies {
			dep := dep
			g.Go(func() error {
				if !m.Activate(ctx, dep, cfg) {
					return fmt.Errorf("dependency %s failed to set up", dep)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	if m.setupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.setupTimeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("setup of %s panicked: %v", comp.Name, rec)
		}
	}()
	return comp.Setup(ctx, cfg)
}
