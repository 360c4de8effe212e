package loop

import "github.com/rs/zerolog"

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report recovered job panics.
func WithLogger(l zerolog.Logger) Option {
	return func(lp *Loop) { lp.log = l.With().Str("pkg", "loop").Logger() }
}
