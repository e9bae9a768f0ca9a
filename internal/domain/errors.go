package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories wrap
// ErrNotFound; services wrap the state-conflict errors with context before
// surfacing them to the caller.
var (
	ErrNotFound = errors.New("not found")

	// ErrPlanFrozen signals that execution has started for the month and its
	// planning rows no longer accept adjustments.
	ErrPlanFrozen = errors.New("plan is no longer in draft state")

	// ErrExecutionActive signals an attempt to start tracking while another
	// execution record is already EXECUTING.
	ErrExecutionActive = errors.New("an execution is already in progress")

	// ErrNotExecuting signals an operation that requires an EXECUTING record.
	ErrNotExecuting = errors.New("no execution in progress")

	// ErrInvalidState signals a state-machine transition from the wrong state.
	ErrInvalidState = errors.New("invalid execution state for this operation")

	// ErrUndoWindowExpired signals an undo attempted after its 24h grace period.
	ErrUndoWindowExpired = errors.New("undo window has expired")
)
