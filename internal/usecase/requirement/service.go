package requirement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// Status thresholds are absolute amounts in the goal's own currency units.
// They do not account for currency magnitude (BTC vs JPY); a known
// simplification carried over deliberately.
var (
	criticalThreshold  = decimal.NewFromInt(10000)
	attentionThreshold = decimal.NewFromInt(5000)
)

// Service computes per-goal monthly requirements and aggregate totals.
type Service struct {
	GoalRepo domain.GoalRepository
	Funding  domain.FundingCalculator
	Rates    domain.RateProvider
	Clock    domain.Clock
	Settings domain.SettingsStore
}

// NewService creates a new requirement Service instance
func NewService(
	goalRepo domain.GoalRepository,
	funding domain.FundingCalculator,
	rates domain.RateProvider,
	clock domain.Clock,
	settings domain.SettingsStore,
) *Service {
	return &Service{
		GoalRepo: goalRepo,
		Funding:  funding,
		Rates:    rates,
		Clock:    clock,
		Settings: settings,
	}
}

// CalculateForGoal computes a goal's monthly requirement:
// funded total, remaining amount, payment periods left before the deadline,
// required amount per period, progress and a status classification.
func (s *Service) CalculateForGoal(ctx context.Context, goal *domain.Goal) (*domain.MonthlyRequirement, error) {
	current, err := s.Funding.FundedInGoalCurrency(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to compute funded total for goal %s: %w", goal.ID, err)
	}

	remaining := goal.TargetAmount.Sub(current)
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}

	paymentDay, err := s.Settings.PaymentDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment day: %w", err)
	}

	months := domain.PaymentPeriodsUntil(s.Clock.Now(), goal.Deadline, paymentDay)
	required := remaining.Div(decimal.NewFromInt(int64(months)))

	progress := decimal.Zero
	if goal.TargetAmount.GreaterThan(decimal.Zero) {
		progress = current.Div(goal.TargetAmount)
		if progress.GreaterThan(decimal.NewFromInt(1)) {
			progress = decimal.NewFromInt(1)
		}
	}

	return &domain.MonthlyRequirement{
		GoalID:          goal.ID,
		GoalName:        goal.Name,
		Currency:        goal.Currency,
		TargetAmount:    goal.TargetAmount,
		CurrentTotal:    current,
		RemainingAmount: remaining,
		MonthsRemaining: months,
		RequiredMonthly: required,
		Progress:        progress,
		Deadline:        goal.Deadline,
		Status:          classify(remaining, required, months),
	}, nil
}

// CalculateAll computes requirements for every ACTIVE goal.
func (s *Service) CalculateAll(ctx context.Context) ([]domain.MonthlyRequirement, error) {
	goals, err := s.GoalRepo.List(ctx, domain.GoalActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}

	requirements := make([]domain.MonthlyRequirement, 0, len(goals))
	for _, goal := range goals {
		req, err := s.CalculateForGoal(ctx, goal)
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, *req)
	}
	return requirements, nil
}

// CalculateTotalRequired sums the required monthly amounts converted to the
// display currency. A per-item conversion failure falls back to adding the
// amount unconverted (1:1). This asymmetry with the 0-fallback used for
// funded totals is intentional; the two call sites are separate contracts.
func (s *Service) CalculateTotalRequired(ctx context.Context, requirements []domain.MonthlyRequirement, displayCurrency string) decimal.Decimal {
	total := decimal.Zero
	for _, req := range requirements {
		if req.Currency == displayCurrency {
			total = total.Add(req.RequiredMonthly)
			continue
		}

		rate, err := s.Rates.Rate(ctx, req.Currency, displayCurrency)
		if err != nil {
			total = total.Add(req.RequiredMonthly)
			continue
		}
		total = total.Add(req.RequiredMonthly.Mul(rate))
	}
	return total
}

// classify applies the status rules in priority order: completion wins, then
// the absolute required-amount thresholds, then the runway check.
func classify(remaining, required decimal.Decimal, months int) domain.RequirementStatus {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return domain.StatusCompleted
	}
	if required.GreaterThan(criticalThreshold) {
		return domain.StatusCritical
	}
	if required.GreaterThan(attentionThreshold) || months <= 1 {
		return domain.StatusAttention
	}
	return domain.StatusOnTrack
}
