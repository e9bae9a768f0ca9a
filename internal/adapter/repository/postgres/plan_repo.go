package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// planRepository implements domain.PlanRepository
type planRepository struct {
	db *DB
}

// NewPlanRepository creates a new monthly goal plan repository
func NewPlanRepository(db *DB) domain.PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, goal_id, month_label, required_monthly, remaining_amount,
	months_remaining, currency, status, state, custom_amount, is_protected,
	is_skipped, created_at, updated_at`

// GetByGoalAndMonth retrieves the plan row for one goal in one month
func (r *planRepository) GetByGoalAndMonth(ctx context.Context, goalID uuid.UUID, monthLabel string) (*domain.MonthlyGoalPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM monthly_goal_plans
		WHERE goal_id = $1 AND month_label = $2
	`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, goalID, monthLabel))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan for goal %s in %s: %w", goalID, monthLabel, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

// ListByMonth retrieves all plan rows for a month label
func (r *planRepository) ListByMonth(ctx context.Context, monthLabel string) ([]*domain.MonthlyGoalPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM monthly_goal_plans
		WHERE month_label = $1
	`

	rows, err := r.db.QueryContext(ctx, query, monthLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for %s: %w", monthLabel, err)
	}
	defer rows.Close()

	plans := make([]*domain.MonthlyGoalPlan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Create creates a new plan row
func (r *planRepository) Create(ctx context.Context, plan *domain.MonthlyGoalPlan) error {
	query := `
		INSERT INTO monthly_goal_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.GoalID,
		plan.MonthLabel,
		plan.RequiredMonthly.String(),
		plan.RemainingAmount.String(),
		plan.MonthsRemaining,
		plan.Currency,
		string(plan.Status),
		string(plan.State),
		nullDecimal(plan.CustomAmount),
		plan.IsProtected,
		plan.IsSkipped,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// Update persists changes to an existing plan row
func (r *planRepository) Update(ctx context.Context, plan *domain.MonthlyGoalPlan) error {
	query := `
		UPDATE monthly_goal_plans
		SET required_monthly = $2, remaining_amount = $3, months_remaining = $4,
		    currency = $5, status = $6, state = $7, custom_amount = $8,
		    is_protected = $9, is_skipped = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.RequiredMonthly.String(),
		plan.RemainingAmount.String(),
		plan.MonthsRemaining,
		plan.Currency,
		string(plan.Status),
		string(plan.State),
		nullDecimal(plan.CustomAmount),
		plan.IsProtected,
		plan.IsSkipped,
		plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("plan %s: %w", plan.ID, domain.ErrNotFound)
	}
	return nil
}

func scanPlan(s scanner) (*domain.MonthlyGoalPlan, error) {
	var plan domain.MonthlyGoalPlan
	var requiredStr, remainingStr string
	var customStr sql.NullString

	err := s.Scan(
		&plan.ID,
		&plan.GoalID,
		&plan.MonthLabel,
		&requiredStr,
		&remainingStr,
		&plan.MonthsRemaining,
		&plan.Currency,
		&plan.Status,
		&plan.State,
		&customStr,
		&plan.IsProtected,
		&plan.IsSkipped,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	required, err := decimal.NewFromString(requiredStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse required_monthly: %w", err)
	}
	plan.RequiredMonthly = required

	remaining, err := decimal.NewFromString(remainingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remaining_amount: %w", err)
	}
	plan.RemainingAmount = remaining

	if customStr.Valid {
		custom, err := decimal.NewFromString(customStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse custom_amount: %w", err)
		}
		plan.CustomAmount = &custom
	}

	return &plan, nil
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
