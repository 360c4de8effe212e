package types

// DiscoverRequest is the body of POST /discover.
type DiscoverRequest struct {
	// Service name to announce.
	// example: hub_found
	Service string `json:"service" example:"hub_found"`
	// Optional payload handed to every listener. Omitted or null means absent,
	// which listeners can tell apart from an empty object.
	Discovered map[string]any `json:"discovered"`
	// Optional component to activate before the announcement.
	// example: notify
	Component string `json:"component,omitempty" example:"notify"`
}

// LoadPlatformRequest is the body of POST /platforms.
type LoadPlatformRequest struct {
	// Component that owns the platform.
	// example: light
	Component string `json:"component" example:"light"`
	// Platform name to load for the component.
	// example: hue
	Platform string `json:"platform" example:"hue"`
	// Optional payload handed to the platform listener.
	Discovered map[string]any `json:"discovered"`
}

// AnnounceResponse is returned once an announcement request has been handled.
type AnnounceResponse struct {
	// Topic the announcement went out on.
	// example: load_platform.light
	Service string `json:"service" example:"load_platform.light"`
	// Component named by the request, if any.
	// example: light
	Component string `json:"component,omitempty" example:"light"`
	// Whether the component was active after the request. When false the
	// announcement was suppressed because activation failed.
	// example: true
	ComponentActive bool `json:"component_active" example:"true"`
}

// ComponentsResponse wraps the list returned by GET /components.
type ComponentsResponse struct {
	// Names of active components, sorted.
	// example: ["hub","light"]
	Components []string `json:"components" example:"hub,light"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall host state: starting, ready or stopped.
	// example: ready
	State string `json:"state" example:"ready"`
	// Every registered component with its lifecycle state.
	Components []ComponentStatus `json:"components"`
	// Listener count per bus topic.
	Listeners map[string]int `json:"listeners,omitempty"`
	// Uptime of the host in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
