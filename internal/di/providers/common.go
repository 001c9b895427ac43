// Package providers contains the samber/do providers that assemble the
// Habito server.
package providers

import "time"

const (
	// shutdownTimeout bounds graceful shutdown of servers and exporters.
	shutdownTimeout = 30 * time.Second

	// kvGCInterval is how often the session store reclaims value log space.
	kvGCInterval = 30 * time.Minute
	kvGCDiscard  = 0.5
)
