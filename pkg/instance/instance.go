package instance

import "os"

// GetID identifies the running API process in logs. The platform dyno name
// wins, then the host name.
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
