package discovery

import (
	"context"

	"hubd/internal/bus"
	"hubd/internal/config"
	"hubd/internal/metrics"
)

// Listen registers cb for announcements of any of services. It may be called
// from any goroutine and returns once the listener is installed, so an
// announcement made after Listen returns is guaranteed to be seen.
func (d *Discovery) Listen(ctx context.Context, services []string, cb ServiceCallback) error {
	return d.sched.Call(ctx, func(context.Context) { d.AsyncListen(services, cb) })
}

// AsyncListen is the loop-only form of Listen.
func (d *Discovery) AsyncListen(services []string, cb ServiceCallback) {
	wanted := make(map[string]struct{}, len(services))
	for _, s := range services {
		wanted[s] = struct{}{}
	}
	d.bus.AsyncListen(EventPlatformDiscovered, func(ctx context.Context, e bus.Event) {
		service, ok := e.Data[AttrService].(string)
		if !ok {
			return
		}
		if _, ok := wanted[service]; !ok {
			return
		}
		discovered := discoveredFrom(e.Data)
		metrics.Delivered(metrics.KindService)
		d.sched.CreateTask(func(tctx context.Context) { cb(tctx, service, discovered) })
	})
}

// Discover announces service, first activating component when it is set and
// not yet active. It returns after the announcement has been broadcast, or
// with nil and no broadcast when activation failed. A deny-listed component
// yields a *ForbiddenComponentError. An empty component means no activation
// requirement.
func (d *Discovery) Discover(ctx context.Context, service string, discovered Info, component string, cfg *config.Config) error {
	if d.sched.InLoop(ctx) {
		return ErrCalledFromLoop
	}
	if component != "" {
		ok, err := d.ensureActive(ctx, component, cfg)
		if err != nil {
			return err
		}
		if !ok {
			metrics.Dropped(metrics.ReasonActivationFailed)
			d.log.Warn().Str("service", service).Str("component", component).Msg("discovery event=discover_skipped: component did not set up")
			return nil
		}
	}
	d.log.Debug().Str("service", service).Str("component", component).Msg("discovery event=discover")
	return d.broadcast(ctx, metrics.KindService, eventData(service, discovered))
}

// ScheduleDiscover runs Discover as an independent task and returns
// immediately. Errors are logged.
func (d *Discovery) ScheduleDiscover(service string, discovered Info, component string, cfg *config.Config) {
	d.sched.CreateTask(func(ctx context.Context) {
		if err := d.Discover(ctx, service, discovered, component, cfg); err != nil {
			d.log.Error().Err(err).Str("service", service).Str("component", component).Msg("discovery event=discover_failed")
		}
	})
}
