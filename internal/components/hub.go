package components

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"hubd/internal/config"
	"hubd/internal/discovery"
	"hubd/internal/setup"
)

const (
	// HubName is the component name the hub registers under.
	HubName = "hub"

	// ServiceHubFound is announced once the hub has scanned its devices.
	ServiceHubFound = "hub_found"
)

// Device is one sub-device configured under the hub.
type Device struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
}

type hubConfig struct {
	Devices []Device `yaml:"devices"`
	Bridges []string `yaml:"bridges"`
}

// Hub detects sub-devices and announces a light platform for each. Bridges
// are platforms of the hub itself, announced from inside its own setup.
type Hub struct {
	disc *discovery.Discovery
	log  zerolog.Logger

	mu      sync.Mutex
	bridges []string
}

// NewHub returns a hub that announces through disc.
func NewHub(disc *discovery.Discovery, log zerolog.Logger) *Hub {
	return &Hub{disc: disc, log: log.With().Str("component", HubName).Logger()}
}

// Component returns the hub registration for a setup.Manager.
func (h *Hub) Component() setup.Component {
	return setup.Component{Name: HubName, Setup: h.setup}
}

func (h *Hub) setup(ctx context.Context, cfg *config.Config) error {
	var hc hubConfig
	if err := cfg.Section(HubName).Decode(&hc); err != nil {
		return fmt.Errorf("hub config: %w", err)
	}
	for i, d := range hc.Devices {
		if d.ID == "" || d.Platform == "" {
			return fmt.Errorf("hub config: device %d needs id and platform", i)
		}
	}

	if err := h.disc.ListenPlatform(ctx, HubName, h.onBridge); err != nil {
		return err
	}

	// Every announcement below is scheduled, never awaited. The hub is still
	// inside its own activation, so an awaited bridge load would be dropped.
	for _, b := range hc.Bridges {
		if err := h.disc.ScheduleLoadPlatform(HubName, b, nil, cfg); err != nil {
			return err
		}
	}
	for _, d := range hc.Devices {
		info := discovery.Info{"id": d.ID, "name": d.Name, "via": HubName}
		if err := h.disc.ScheduleLoadPlatform(LightName, d.Platform, info, cfg); err != nil {
			return err
		}
	}
	h.disc.ScheduleDiscover(ServiceHubFound, discovery.Info{"devices": len(hc.Devices)}, NotifyName, cfg)
	h.log.Info().Int("devices", len(hc.Devices)).Int("bridges", len(hc.Bridges)).Msg("hub event=scan_done")
	return nil
}

func (h *Hub) onBridge(_ context.Context, platform string, _ discovery.Info) {
	h.mu.Lock()
	h.bridges = append(h.bridges, platform)
	h.mu.Unlock()
	h.log.Info().Str("platform", platform).Msg("hub event=bridge_loaded")
}

// Bridges returns the bridge platforms loaded so far, in arrival order.
func (h *Hub) Bridges() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bridges...)
}
