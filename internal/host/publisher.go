package host

import (
	"hubd/internal/bus"
	"hubd/internal/setup"
)

// EventComponentLoaded is fired on the bus after a component finished setup.
const EventComponentLoaded = "component_loaded"

// busPublisher forwards setup lifecycle events onto the bus.
type busPublisher struct {
	bus *bus.Bus
}

func (p busPublisher) Publish(e setup.Event) {
	if e.Name != "setup_ready" {
		return
	}
	// Fire only enqueues; ErrStopped during shutdown is not interesting.
	_ = p.bus.Fire(EventComponentLoaded, map[string]any{"component": e.Component})
}
