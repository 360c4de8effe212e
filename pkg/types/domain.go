package types

// ComponentStatus summarizes one registered component for /status.
type ComponentStatus struct {
	// Component name.
	// example: light
	Name string `json:"name" example:"light"`
	// Components that are activated first.
	Dependencies []string `json:"dependencies,omitempty"`
	// Lifecycle state: not_loaded, setup, loaded or failed.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Last setup error, if the component failed.
	Error string `json:"error,omitempty"`
	// Duration of the last setup in milliseconds.
	// example: 3
	SetupMS int64 `json:"setup_ms" example:"3"`
}
