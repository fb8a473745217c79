package instance

import "os"

// GetID returns the process instance identifier used in log fields. It
// prefers DISCOPE_INSTANCE_ID, then the platform dyno name, then the host name.
func GetID() string {
	if id := os.Getenv("DISCOPE_INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
