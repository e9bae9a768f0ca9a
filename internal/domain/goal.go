package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecycleStatus represents the lifecycle state of a goal
type LifecycleStatus string

const (
	GoalActive    LifecycleStatus = "ACTIVE"
	GoalCancelled LifecycleStatus = "CANCELLED"
	GoalFinished  LifecycleStatus = "FINISHED"
)

// Goal represents a named savings target with a deadline and currency.
// Only ACTIVE goals participate in requirement and schedule calculations.
type Goal struct {
	ID           uuid.UUID
	Name         string
	Currency     string
	TargetAmount decimal.Decimal
	Deadline     time.Time
	StartDate    time.Time
	Status       LifecycleStatus
	Emoji        string
	Description  string
}

// Validate ensures the goal adheres to domain rules
// Returns an error if validation fails
func (g *Goal) Validate() error {
	if g.Name == "" {
		return errors.New("goal name cannot be empty")
	}

	if g.Currency == "" {
		return errors.New("goal currency cannot be empty")
	}

	// targetAmount must be positive for planning to be meaningful
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("goal target amount must be positive")
	}

	if !g.Deadline.After(g.StartDate) {
		return errors.New("goal deadline must be after its start date")
	}

	switch g.Status {
	case GoalActive, GoalCancelled, GoalFinished:
	default:
		return errors.New("goal status must be ACTIVE, CANCELLED or FINISHED")
	}

	return nil
}

// IsActive reports whether the goal participates in planning.
func (g *Goal) IsActive() bool {
	return g.Status == GoalActive
}
