package bus

import "github.com/rs/zerolog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the bus logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) { b.log = l.With().Str("pkg", "bus").Logger() }
}
