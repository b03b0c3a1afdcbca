// Package lifecycle holds shared lifecycle constants for graceful shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds how long a component may take to shut down cleanly.
const DefaultTimeout = 10 * time.Second
