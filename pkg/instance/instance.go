package instance

import (
	"os"

	"github.com/angelmondragon/directsales-backend/pkg/env"
)

// GetID returns the worker instance identifier. It is used as the owner
// value on distributed locks, so it falls back to the hostname.
func GetID() string {
	if id := env.Get("DIRECTSALES_WORKER_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
