// Package components holds the built-in components of the host. The hub
// announces drivers for its sub-devices; light and notify consume those
// announcements through platform and service discovery.
package components

import (
	"github.com/rs/zerolog"

	"hubd/internal/discovery"
	"hubd/internal/setup"
)

// Set is the collection of built-in components.
type Set struct {
	Hub    *Hub
	Light  *Light
	Notify *Notify
}

// Register builds the built-in components and registers them with mgr.
func Register(mgr *setup.Manager, disc *discovery.Discovery, log zerolog.Logger) (*Set, error) {
	s := &Set{
		Hub:    NewHub(disc, log),
		Light:  NewLight(disc, log),
		Notify: NewNotify(disc, log),
	}
	for _, c := range []setup.Component{s.Hub.Component(), s.Light.Component(), s.Notify.Component()} {
		if err := mgr.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}
