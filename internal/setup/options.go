package setup

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l.With().Str("pkg", "setup").Logger() }
}

// WithEventPublisher installs a lifecycle event publisher.
func WithEventPublisher(p EventPublisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.publisher = p
		}
	}
}

// WithSetupTimeout bounds the context handed to each SetupFunc. Zero disables.
func WithSetupTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.setupTimeout = d
		}
	}
}
