package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateProvider looks up an exchange rate from one currency to another.
// Lookups are network-bound and may fail; every caller defines its own local
// fallback (0-contribution, 1:1, or unconverted) rather than propagating the
// failure.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Clock abstracts wall-clock time so undo windows and payment-date math are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ChainBalanceProvider fetches the on-chain balance for an asset that carries
// a chain address. Implementations may be absent; callers treat a fetch
// failure as a zero on-chain balance.
type ChainBalanceProvider interface {
	Balance(ctx context.Context, asset *Asset) (decimal.Decimal, error)
}

// FundingCalculator computes how much of a goal's target is actually backed
// by allocated asset balances, in the goal's currency.
type FundingCalculator interface {
	FundedInGoalCurrency(ctx context.Context, goal *Goal) (decimal.Decimal, error)
}

// PlanningMode selects how monthly contributions are planned.
type PlanningMode string

const (
	ModePerGoal     PlanningMode = "PER_GOAL"
	ModeFixedBudget PlanningMode = "FIXED_BUDGET"
)

// SettingsStore is the persisted key/value planning configuration.
type SettingsStore interface {
	PaymentDay(ctx context.Context) (int, error)
	SetPaymentDay(ctx context.Context, day int) error

	DisplayCurrency(ctx context.Context) (string, error)
	SetDisplayCurrency(ctx context.Context, currency string) error

	FlexFactor(ctx context.Context) (float64, error)
	SetFlexFactor(ctx context.Context, factor float64) error

	Mode(ctx context.Context) (PlanningMode, error)
	SetMode(ctx context.Context, mode PlanningMode) error

	MonthlyBudget(ctx context.Context) (decimal.Decimal, string, error)
	SetMonthlyBudget(ctx context.Context, amount decimal.Decimal, currency string) error
}
