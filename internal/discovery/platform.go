package discovery

import (
	"context"

	"hubd/internal/bus"
	"hubd/internal/config"
	"hubd/internal/metrics"
)

// ListenPlatform registers cb for platform announcements of component from
// any goroutine, returning once the listener is installed.
func (d *Discovery) ListenPlatform(ctx context.Context, component string, cb PlatformCallback) error {
	return d.sched.Call(ctx, func(context.Context) { d.AsyncListenPlatform(component, cb) })
}

// AsyncListenPlatform registers cb for platform announcements of component.
// Must run on the loop. Events on the component's topic that carry no
// platform name are dropped.
func (d *Discovery) AsyncListenPlatform(component string, cb PlatformCallback) {
	topic := LoadPlatformTopic(component)
	d.bus.AsyncListen(EventPlatformDiscovered, func(ctx context.Context, e bus.Event) {
		if service, _ := e.Data[AttrService].(string); service != topic {
			return
		}
		platform, _ := e.Data[AttrPlatform].(string)
		if platform == "" {
			metrics.Dropped(metrics.ReasonMalformed)
			d.log.Debug().Str("component", component).Str("event_id", e.ID).Msg("discovery event=platform_malformed")
			return
		}
		discovered := discoveredFrom(e.Data)
		metrics.Delivered(metrics.KindPlatform)
		d.sched.CreateTask(func(tctx context.Context) { cb(tctx, platform, discovered) })
	})
}

// LoadPlatform activates component if needed and then announces platform for
// it. It returns after the broadcast, or with nil and no broadcast when
// activation failed.
//
// Do not call LoadPlatform from within the setup of component itself: that
// setup is what the activation is waiting on. Use ScheduleLoadPlatform there.
func (d *Discovery) LoadPlatform(ctx context.Context, component, platform string, discovered Info, cfg *config.Config) error {
	if cfg.Empty() {
		return ErrConfigRequired
	}
	if component == "" {
		return ErrComponentRequired
	}
	if d.sched.InLoop(ctx) {
		return ErrCalledFromLoop
	}
	ok, err := d.ensureActive(ctx, component, cfg)
	if err != nil {
		return err
	}
	if !ok {
		metrics.Dropped(metrics.ReasonActivationFailed)
		d.log.Warn().Str("component", component).Str("platform", platform).Msg("discovery event=load_platform_skipped: component did not set up")
		return nil
	}
	data := eventData(LoadPlatformTopic(component), discovered)
	data[AttrPlatform] = platform
	d.log.Debug().Str("component", component).Str("platform", platform).Msg("discovery event=load_platform")
	return d.broadcast(ctx, metrics.KindPlatform, data)
}

// ScheduleLoadPlatform runs LoadPlatform as an independent task and returns
// immediately. This is the form to use from inside a component's setup.
// The config precondition is still checked synchronously.
func (d *Discovery) ScheduleLoadPlatform(component, platform string, discovered Info, cfg *config.Config) error {
	if cfg.Empty() {
		return ErrConfigRequired
	}
	if component == "" {
		return ErrComponentRequired
	}
	d.sched.CreateTask(func(ctx context.Context) {
		if err := d.LoadPlatform(ctx, component, platform, discovered, cfg); err != nil {
			d.log.Error().Err(err).Str("component", component).Str("platform", platform).Msg("discovery event=load_platform_failed")
		}
	})
	return nil
}
