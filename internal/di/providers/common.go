package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// connectTimeout bounds the startup connect-and-retry loop per store.
	connectTimeout = 30 * time.Second
)
