// Package discovery lets components announce services and platforms at
// runtime and lets other components react, without compile-time coupling.
//
// Two addressing schemes share the EventPlatformDiscovered bus topic:
//
//   - service discovery: Discover announces a raw service name; Listen
//     subscribes to a set of service names.
//   - platform discovery: LoadPlatform announces a platform for a component
//     under the synthesized service LoadPlatformTopic(component);
//     ListenPlatform subscribes to the platforms of one component.
//
// Both announce forms first pass through the dependency guard: deny-listed
// components are rejected, and the required component is activated before
// anything is broadcast. If activation fails nothing is broadcast.
//
// Every producer comes in two forms. Discover and LoadPlatform await
// activation and broadcast. ScheduleDiscover and ScheduleLoadPlatform start an
// independent task and return at once; a component's own setup must use the
// Schedule form, since awaiting its own activation can never complete.
//
// Listener registration and delivery run on the loop. Matching callbacks are
// each started as an independent task, so a slow consumer never holds up the
// producer or other consumers.
package discovery

import (
	"context"
	"maps"

	"github.com/rs/zerolog"

	"hubd/internal/bus"
	"hubd/internal/config"
	"hubd/internal/metrics"
)

// Info is the producer-supplied payload of an announcement. A nil Info means
// the producer passed none and is distinct from an empty Info.
type Info map[string]any

// ServiceCallback receives a matching service announcement.
type ServiceCallback func(ctx context.Context, service string, discovered Info)

// PlatformCallback receives a platform announcement for the listened component.
type PlatformCallback func(ctx context.Context, platform string, discovered Info)

// Scheduler is the loop the discovery layers run on.
type Scheduler interface {
	Call(ctx context.Context, fn func(ctx context.Context)) error
	CreateTask(fn func(ctx context.Context))
	InLoop(ctx context.Context) bool
}

// Broadcaster is the loop-owned side of the event bus.
type Broadcaster interface {
	AsyncListen(topic string, h bus.Handler) (remove func())
	AsyncFire(ctx context.Context, topic string, data map[string]any)
}

// Activator is the component activation subsystem.
type Activator interface {
	IsActive(name string) bool
	Activate(ctx context.Context, name string, cfg *config.Config) bool
}

// Discovery routes service and platform announcements between components.
type Discovery struct {
	sched     Scheduler
	bus       Broadcaster
	activator Activator
	log       zerolog.Logger
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithLogger sets the discovery logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Discovery) { d.log = l.With().Str("pkg", "discovery").Logger() }
}

// New returns a Discovery that runs on sched, broadcasts on b and activates
// required components through act.
func New(sched Scheduler, b Broadcaster, act Activator, opts ...Option) *Discovery {
	d := &Discovery{sched: sched, bus: b, activator: act, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// broadcast fires data on the discovery topic and returns after every
// current listener has seen it.
func (d *Discovery) broadcast(ctx context.Context, kind string, data map[string]any) error {
	return d.sched.Call(ctx, func(lctx context.Context) {
		d.bus.AsyncFire(lctx, EventPlatformDiscovered, data)
		metrics.Announced(kind)
	})
}

func eventData(service string, discovered Info) map[string]any {
	data := map[string]any{AttrService: service}
	if discovered != nil {
		data[AttrDiscovered] = discovered
	}
	return data
}

// discoveredFrom returns a private copy of the payload carried by data, or
// nil when the event has none.
func discoveredFrom(data map[string]any) Info {
	switch v := data[AttrDiscovered].(type) {
	case Info:
		return maps.Clone(v)
	case map[string]any:
		return maps.Clone(Info(v))
	default:
		return nil
	}
}
