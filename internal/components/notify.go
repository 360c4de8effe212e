package components

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"hubd/internal/config"
	"hubd/internal/discovery"
	"hubd/internal/setup"
)

// NotifyName is the component name notify registers under.
const NotifyName = "notify"

// Notify is a service-discovery consumer that records hub announcements.
type Notify struct {
	disc *discovery.Discovery
	log  zerolog.Logger

	mu   sync.Mutex
	seen []discovery.Info
}

// NewNotify returns a notify consumer listening on disc.
func NewNotify(disc *discovery.Discovery, log zerolog.Logger) *Notify {
	return &Notify{disc: disc, log: log.With().Str("component", NotifyName).Logger()}
}

// Component returns the notify registration for a setup.Manager.
func (n *Notify) Component() setup.Component {
	return setup.Component{Name: NotifyName, Setup: n.setup}
}

func (n *Notify) setup(ctx context.Context, _ *config.Config) error {
	return n.disc.Listen(ctx, []string{ServiceHubFound}, n.onHubFound)
}

func (n *Notify) onHubFound(_ context.Context, service string, discovered discovery.Info) {
	n.mu.Lock()
	n.seen = append(n.seen, discovered)
	n.mu.Unlock()
	n.log.Info().Str("service", service).Interface("discovered", discovered).Msg("notify event=service_seen")
}

// Seen returns the payloads of every hub announcement received.
func (n *Notify) Seen() []discovery.Info {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]discovery.Info(nil), n.seen...)
}
