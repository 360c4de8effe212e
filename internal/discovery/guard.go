package discovery

import (
	"context"

	"hubd/internal/config"
)

// denyList names components that must never be pulled in through discovery.
// Reaching one means an upstream design error, not a runtime condition.
var denyList = map[string]struct{}{
	"config": {},
}

// Forbidden reports whether component is on the discovery deny-list.
func Forbidden(component string) bool {
	_, ok := denyList[component]
	return ok
}

// ensureActive guarantees component is active before an announcement is
// broadcast. It rejects deny-listed names without touching the activator.
func (d *Discovery) ensureActive(ctx context.Context, component string, cfg *config.Config) (bool, error) {
	if Forbidden(component) {
		return false, &ForbiddenComponentError{Component: component}
	}
	if d.activator.IsActive(component) {
		return true, nil
	}
	return d.activator.Activate(ctx, component, cfg), nil
}
