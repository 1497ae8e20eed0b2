package generation

import "github.com/google/uuid"

// RunContext carries per-run identity and every source of nondeterminism the
// pipeline uses. Tests seed NewID with a fixed sequence to obtain
// byte-identical output for identical collaborator behaviour.
type RunContext struct {
	// ActivityID is the opaque identifier handed to the pipeline by the
	// caller; it is echoed on every progress event and in the final result.
	ActivityID string

	// NewID mints identifiers for generated problems.
	NewID func() string
}

// NewRunContext builds a production run context with UUID-based ids.
func NewRunContext(activityID string) RunContext {
	if activityID == "" {
		activityID = uuid.NewString()
	}
	return RunContext{
		ActivityID: activityID,
		NewID:      uuid.NewString,
	}
}
