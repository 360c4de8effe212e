package setup

import (
	"context"
	"time"

	"hubd/internal/config"
)

// SetupFunc brings a component up. A non-nil error marks activation as failed.
type SetupFunc func(ctx context.Context, cfg *config.Config) error

// Component is a unit the Manager can activate.
type Component struct {
	Name         string
	Dependencies []string
	Setup        SetupFunc
}

// State is the lifecycle state of one component.
type State string

const (
	StateNotLoaded State = "not_loaded"
	StateSetup     State = "setup"
	StateLoaded    State = "loaded"
	StateFailed    State = "failed"
)

// Status is a read-only projection of one registered component.
type Status struct {
	Name         string
	Dependencies []string
	State        State
	Err          string
	SetupTime    time.Duration
}

type record struct {
	comp      Component
	state     State
	err       string
	setupTime time.Duration
}

type attempt struct {
	done chan struct{}
	ok   bool
}
