package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGoal_Validate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := Goal{
		ID:           uuid.New(),
		Name:         "House Deposit",
		Currency:     "EUR",
		TargetAmount: decimal.NewFromInt(20000),
		Deadline:     deadline,
		StartDate:    start,
		Status:       GoalActive,
	}

	tests := []struct {
		name    string
		mutate  func(g *Goal)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid goal passes",
			mutate:  func(g *Goal) {},
			wantErr: false,
		},
		{
			name:    "empty name fails",
			mutate:  func(g *Goal) { g.Name = "" },
			wantErr: true,
			errMsg:  "goal name cannot be empty",
		},
		{
			name:    "empty currency fails",
			mutate:  func(g *Goal) { g.Currency = "" },
			wantErr: true,
			errMsg:  "goal currency cannot be empty",
		},
		{
			name:    "zero target fails",
			mutate:  func(g *Goal) { g.TargetAmount = decimal.Zero },
			wantErr: true,
			errMsg:  "goal target amount must be positive",
		},
		{
			name:    "negative target fails",
			mutate:  func(g *Goal) { g.TargetAmount = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "goal target amount must be positive",
		},
		{
			name:    "deadline equal to start fails",
			mutate:  func(g *Goal) { g.Deadline = g.StartDate },
			wantErr: true,
			errMsg:  "goal deadline must be after its start date",
		},
		{
			name:    "unknown status fails",
			mutate:  func(g *Goal) { g.Status = "PAUSED" },
			wantErr: true,
			errMsg:  "goal status must be ACTIVE, CANCELLED or FINISHED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := valid
			tt.mutate(&goal)
			err := goal.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGoal_IsActive(t *testing.T) {
	assert.True(t, (&Goal{Status: GoalActive}).IsActive())
	assert.False(t, (&Goal{Status: GoalCancelled}).IsActive())
	assert.False(t, (&Goal{Status: GoalFinished}).IsActive())
}
