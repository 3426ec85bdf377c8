package service

// AuthMetrics records the outcome of credential operations.
type AuthMetrics interface {
	// ObserveOutcome counts one operation ("register", "login", "validate")
	// with its outcome ("success" or an error kind name).
	ObserveOutcome(operation, outcome string)
}
