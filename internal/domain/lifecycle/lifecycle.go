// Package lifecycle holds shared start/stop settings for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every OnStart/OnStop hook (DB ping, redis ping, HTTP shutdown).
const DefaultTimeout = 10 * time.Second
