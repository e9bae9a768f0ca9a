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

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, name, currency, target_amount, deadline, start_date, status, emoji, description`

// GetByID retrieves a goal by its ID
func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE id = $1
	`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get goal by ID: %w", err)
	}
	return goal, nil
}

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Name,
		goal.Currency,
		goal.TargetAmount.String(),
		goal.Deadline,
		goal.StartDate,
		string(goal.Status),
		goal.Emoji,
		goal.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// Update persists changes to an existing goal
func (r *goalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, currency = $3, target_amount = $4, deadline = $5,
		    start_date = $6, status = $7, emoji = $8, description = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Name,
		goal.Currency,
		goal.TargetAmount.String(),
		goal.Deadline,
		goal.StartDate,
		string(goal.Status),
		goal.Emoji,
		goal.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("goal %s: %w", goal.ID, domain.ErrNotFound)
	}
	return nil
}

// List retrieves goals, optionally filtered by lifecycle status
func (r *goalRepository) List(ctx context.Context, statusFilter domain.LifecycleStatus) ([]*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
	`
	args := []interface{}{}
	if statusFilter != "" {
		query += ` WHERE status = $1`
		args = append(args, string(statusFilter))
	}
	query += ` ORDER BY deadline ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(s scanner) (*domain.Goal, error) {
	var goal domain.Goal
	var targetStr string

	err := s.Scan(
		&goal.ID,
		&goal.Name,
		&goal.Currency,
		&targetStr,
		&goal.Deadline,
		&goal.StartDate,
		&goal.Status,
		&goal.Emoji,
		&goal.Description,
	)
	if err != nil {
		return nil, err
	}

	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	goal.TargetAmount = target

	return &goal, nil
}
