package host

import (
	"time"

	"github.com/rs/zerolog"

	"hubd/internal/setup"
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger handed to every subsystem.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Host) { h.log = l }
}

// WithComponents registers extra components next to the built-ins.
func WithComponents(cs ...setup.Component) Option {
	return func(h *Host) { h.extra = append(h.extra, cs...) }
}

// WithSetupTimeout bounds each component setup. Zero disables.
func WithSetupTimeout(d time.Duration) Option {
	return func(h *Host) { h.setupTimeout = d }
}
