package components

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"hubd/internal/config"
	"hubd/internal/discovery"
	"hubd/internal/setup"
)

// LightName is the component name the light registers under.
const LightName = "light"

// LoadedPlatform is one platform a component has picked up through discovery.
type LoadedPlatform struct {
	Platform   string
	Discovered discovery.Info
}

// Light loads a driver platform for every device announced to it.
type Light struct {
	disc *discovery.Discovery
	log  zerolog.Logger

	mu        sync.Mutex
	platforms []LoadedPlatform
}

// NewLight returns a light that listens for its platforms on disc.
func NewLight(disc *discovery.Discovery, log zerolog.Logger) *Light {
	return &Light{disc: disc, log: log.With().Str("component", LightName).Logger()}
}

// Component returns the light registration for a setup.Manager.
func (l *Light) Component() setup.Component {
	return setup.Component{Name: LightName, Setup: l.setup}
}

func (l *Light) setup(ctx context.Context, _ *config.Config) error {
	return l.disc.ListenPlatform(ctx, LightName, l.onPlatform)
}

func (l *Light) onPlatform(_ context.Context, platform string, discovered discovery.Info) {
	l.mu.Lock()
	l.platforms = append(l.platforms, LoadedPlatform{Platform: platform, Discovered: discovered})
	l.mu.Unlock()
	l.log.Info().Str("platform", platform).Interface("discovered", discovered).Msg("light event=platform_loaded")
}

// Platforms returns the loaded platforms sorted by platform name.
func (l *Light) Platforms() []LoadedPlatform {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]LoadedPlatform(nil), l.platforms...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}
