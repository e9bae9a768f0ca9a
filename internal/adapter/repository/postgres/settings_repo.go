package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// Setting keys. Values are stored as text in a single key/value table.
const (
	keyPaymentDay      = "payment_day"
	keyDisplayCurrency = "display_currency"
	keyFlexFactor      = "flex_factor"
	keyPlanningMode    = "planning_mode"
	keyBudgetAmount    = "monthly_budget_amount"
	keyBudgetCurrency  = "monthly_budget_currency"
)

// settingsRepository implements domain.SettingsStore over a key/value table.
// Missing keys resolve to defaults rather than errors so a fresh database is
// immediately usable.
type settingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) domain.SettingsStore {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepository) set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) PaymentDay(ctx context.Context) (int, error) {
	value, err := r.get(ctx, keyPaymentDay, "1")
	if err != nil {
		return 0, err
	}
	day, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid payment day %q: %w", value, err)
	}
	return domain.ClampPaymentDay(day), nil
}

func (r *settingsRepository) SetPaymentDay(ctx context.Context, day int) error {
	return r.set(ctx, keyPaymentDay, strconv.Itoa(domain.ClampPaymentDay(day)))
}

func (r *settingsRepository) DisplayCurrency(ctx context.Context) (string, error) {
	return r.get(ctx, keyDisplayCurrency, "EUR")
}

func (r *settingsRepository) SetDisplayCurrency(ctx context.Context, currency string) error {
	return r.set(ctx, keyDisplayCurrency, currency)
}

func (r *settingsRepository) FlexFactor(ctx context.Context) (float64, error) {
	value, err := r.get(ctx, keyFlexFactor, "1")
	if err != nil {
		return 0, err
	}
	factor, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flex factor %q: %w", value, err)
	}
	return factor, nil
}

func (r *settingsRepository) SetFlexFactor(ctx context.Context, factor float64) error {
	return r.set(ctx, keyFlexFactor, strconv.FormatFloat(factor, 'f', -1, 64))
}

func (r *settingsRepository) Mode(ctx context.Context) (domain.PlanningMode, error) {
	value, err := r.get(ctx, keyPlanningMode, string(domain.ModePerGoal))
	if err != nil {
		return "", err
	}
	return domain.PlanningMode(value), nil
}

func (r *settingsRepository) SetMode(ctx context.Context, mode domain.PlanningMode) error {
	return r.set(ctx, keyPlanningMode, string(mode))
}

func (r *settingsRepository) MonthlyBudget(ctx context.Context) (decimal.Decimal, string, error) {
	amountStr, err := r.get(ctx, keyBudgetAmount, "0")
	if err != nil {
		return decimal.Zero, "", err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid monthly budget %q: %w", amountStr, err)
	}

	currency, err := r.get(ctx, keyBudgetCurrency, "EUR")
	if err != nil {
		return decimal.Zero, "", err
	}
	return amount, currency, nil
}

func (r *settingsRepository) SetMonthlyBudget(ctx context.Context, amount decimal.Decimal, currency string) error {
	if err := r.set(ctx, keyBudgetAmount, amount.String()); err != nil {
		return err
	}
	return r.set(ctx, keyBudgetCurrency, currency)
}
