package httpapi

import "time"

// maxBodyBytes caps the body of the announce endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes sets the maximum request body size. Non-positive restores 1 MiB.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// announceTimeout bounds how long an announce request may wait for
// activation and broadcast. Zero means no extra timeout.
var announceTimeout time.Duration

// SetAnnounceTimeout sets the announce timeout (negative normalizes to 0).
func SetAnnounceTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	announceTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
