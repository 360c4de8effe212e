// Package host is the composition root of hubd: it wires the loop, bus,
// setup manager, discovery and built-in components, and serves the
// operations the HTTP layer exposes.
package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hubd/internal/bus"
	"hubd/internal/components"
	"hubd/internal/config"
	"hubd/internal/discovery"
	"hubd/internal/loop"
	"hubd/internal/setup"
	"hubd/pkg/types"
)

// Host states reported by Status.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateStopped  = "stopped"
)

// ErrServiceRequired is returned by Discover when the request names no service.
var ErrServiceRequired = errors.New("service is required")

type Host struct {
	cfg *config.Config
	log zerolog.Logger

	extra        []setup.Component
	setupTimeout time.Duration

	loop     *loop.Loop
	bus      *bus.Bus
	setup    *setup.Manager
	disc     *discovery.Discovery
	builtins *components.Set

	started   time.Time
	startOnce sync.Once
	booted    chan struct{}
	ready     atomic.Bool
	stopped   atomic.Bool
}

// New builds a host for cfg. Nothing runs until Start.
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	h := &Host{cfg: cfg, log: zerolog.Nop(), booted: make(chan struct{})}
	for _, opt := range opts {
		opt(h)
	}
	h.loop = loop.New(loop.WithLogger(h.log))
	h.bus = bus.New(h.loop, bus.WithLogger(h.log))
	h.setup = setup.New(
		setup.WithLogger(h.log),
		setup.WithEventPublisher(busPublisher{bus: h.bus}),
		setup.WithSetupTimeout(h.setupTimeout),
	)
	h.disc = discovery.New(h.loop, h.bus, h.setup, discovery.WithLogger(h.log))

	set, err := components.Register(h.setup, h.disc, h.log)
	if err != nil {
		return nil, err
	}
	h.builtins = set
	for _, c := range h.extra {
		if err := h.setup.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Start runs the loop and activates every configured component in the
// background. Ready reports true once all of them have settled.
func (h *Host) Start() {
	h.startOnce.Do(func() {
		h.started = time.Now()
		h.loop.Start()
		names := h.cfg.ComponentNames()
		h.log.Info().Strs("components", names).Msg("host event=bootstrap_start")

		var wg sync.WaitGroup
		wg.Add(len(names))
		for _, name := range names {
			name := name
			h.loop.CreateTask(func(ctx context.Context) {
				defer wg.Done()
				h.setup.Activate(ctx, name, h.cfg)
			})
		}
		go func() {
			wg.Wait()
			h.ready.Store(true)
			close(h.booted)
			h.log.Info().Strs("active", h.setup.Active()).Dur("dur", time.Since(h.started)).Msg("host event=bootstrap_done")
		}()
	})
}

// WaitReady blocks until bootstrap has finished or ctx is done.
func (h *Host) WaitReady(ctx context.Context) error {
	select {
	case <-h.booted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects new work and drains the loop.
func (h *Host) Stop(ctx context.Context) error {
	h.stopped.Store(true)
	err := h.loop.Stop(ctx)
	h.log.Info().Err(err).Msg("host event=stopped")
	return err
}

func (h *Host) Loop() *loop.Loop                { return h.loop }
func (h *Host) Bus() *bus.Bus                   { return h.bus }
func (h *Host) Setup() *setup.Manager           { return h.setup }
func (h *Host) Discovery() *discovery.Discovery { return h.disc }
func (h *Host) Builtins() *components.Set       { return h.builtins }

// Ready reports whether bootstrap finished and the host is not stopped.
func (h *Host) Ready() bool {
	return h.ready.Load() && !h.stopped.Load()
}

// Components returns the active component names, sorted.
func (h *Host) Components() []string {
	return h.setup.Active()
}

func (h *Host) Status(ctx context.Context) types.StatusResponse {
	resp := types.StatusResponse{
		State:          StateStarting,
		ServerTimeUnix: time.Now().Unix(),
	}
	switch {
	case h.stopped.Load():
		resp.State = StateStopped
	case h.ready.Load():
		resp.State = StateReady
	}
	if !h.started.IsZero() {
		resp.UptimeSeconds = int64(time.Since(h.started) / time.Second)
	}
	for _, s := range h.setup.Status() {
		resp.Components = append(resp.Components, types.ComponentStatus{
			Name:         s.Name,
			Dependencies: s.Dependencies,
			State:        string(s.State),
			Error:        s.Err,
			SetupMS:      s.SetupTime.Milliseconds(),
		})
	}
	if !h.stopped.Load() {
		if ls, err := h.bus.Listeners(ctx); err == nil {
			resp.Listeners = ls
		}
	}
	return resp
}

// Discover announces a service on behalf of an external caller and waits
// for the broadcast.
func (h *Host) Discover(ctx context.Context, req types.DiscoverRequest) (types.AnnounceResponse, error) {
	if req.Service == "" {
		return types.AnnounceResponse{}, ErrServiceRequired
	}
	if err := h.disc.Discover(ctx, req.Service, discovery.Info(req.Discovered), req.Component, h.cfg); err != nil {
		return types.AnnounceResponse{}, err
	}
	return types.AnnounceResponse{
		Service:         req.Service,
		Component:       req.Component,
		ComponentActive: req.Component == "" || h.setup.IsActive(req.Component),
	}, nil
}

// LoadPlatform announces a platform for a component and waits for the broadcast.
func (h *Host) LoadPlatform(ctx context.Context, req types.LoadPlatformRequest) (types.AnnounceResponse, error) {
	if err := h.disc.LoadPlatform(ctx, req.Component, req.Platform, discovery.Info(req.Discovered), h.cfg); err != nil {
		return types.AnnounceResponse{}, err
	}
	return types.AnnounceResponse{
		Service:         discovery.LoadPlatformTopic(req.Component),
		Component:       req.Component,
		ComponentActive: h.setup.IsActive(req.Component),
	}, nil
}
