package plansync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
	"github.com/simaogato/goalflow-backend/internal/usecase/flexadjust"
)

// Service reconciles persisted per-goal-per-month plan rows with freshly
// computed requirements, preserving user overrides across recalculation.
type Service struct {
	PlanRepo domain.PlanRepository
	Clock    domain.Clock
}

// NewService creates a new plansync Service instance
func NewService(planRepo domain.PlanRepository, clock domain.Clock) *Service {
	return &Service{PlanRepo: planRepo, Clock: clock}
}

// SyncPlans creates a DRAFT plan row for every requirement that has none for
// the month, and refreshes the computed fields of existing rows. User fields
// (protected, skipped, custom amount) are never touched here.
func (s *Service) SyncPlans(ctx context.Context, monthLabel string, requirements []domain.MonthlyRequirement) ([]*domain.MonthlyGoalPlan, error) {
	now := s.Clock.Now()
	plans := make([]*domain.MonthlyGoalPlan, 0, len(requirements))

	for _, req := range requirements {
		plan, err := s.PlanRepo.GetByGoalAndMonth(ctx, req.GoalID, monthLabel)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			plan = &domain.MonthlyGoalPlan{
				ID:              uuid.New(),
				GoalID:          req.GoalID,
				MonthLabel:      monthLabel,
				RequiredMonthly: req.RequiredMonthly,
				RemainingAmount: req.RemainingAmount,
				MonthsRemaining: req.MonthsRemaining,
				Currency:        req.Currency,
				Status:          req.Status,
				State:           domain.PlanDraft,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := s.PlanRepo.Create(ctx, plan); err != nil {
				return nil, fmt.Errorf("failed to create plan for goal %s: %w", req.GoalID, err)
			}

		case err != nil:
			return nil, fmt.Errorf("failed to load plan for goal %s: %w", req.GoalID, err)

		default:
			plan.RequiredMonthly = req.RequiredMonthly
			plan.RemainingAmount = req.RemainingAmount
			plan.MonthsRemaining = req.MonthsRemaining
			plan.Currency = req.Currency
			plan.Status = req.Status
			plan.UpdatedAt = now
			if err := s.PlanRepo.Update(ctx, plan); err != nil {
				return nil, fmt.Errorf("failed to update plan for goal %s: %w", req.GoalID, err)
			}
		}

		plans = append(plans, plan)
	}

	return plans, nil
}

// ToggleProtected flips a plan's protected flag. Protecting a goal clears its
// skipped flag; the two are mutually exclusive.
func (s *Service) ToggleProtected(ctx context.Context, monthLabel string, goalID uuid.UUID) (*domain.MonthlyGoalPlan, error) {
	plan, err := s.loadDraft(ctx, monthLabel, goalID)
	if err != nil {
		return nil, err
	}

	plan.IsProtected = !plan.IsProtected
	if plan.IsProtected {
		plan.IsSkipped = false
	}
	return s.save(ctx, plan)
}

// ToggleSkipped flips a plan's skipped flag. Skipping a goal clears its
// protected flag and leaves any custom amount in place (it is simply ignored
// while skipped).
func (s *Service) ToggleSkipped(ctx context.Context, monthLabel string, goalID uuid.UUID) (*domain.MonthlyGoalPlan, error) {
	plan, err := s.loadDraft(ctx, monthLabel, goalID)
	if err != nil {
		return nil, err
	}

	plan.IsSkipped = !plan.IsSkipped
	if plan.IsSkipped {
		plan.IsProtected = false
	}
	return s.save(ctx, plan)
}

// SetCustomAmount sets or clears (amount == nil) a plan's override amount.
// Setting an override un-skips the goal.
func (s *Service) SetCustomAmount(ctx context.Context, monthLabel string, goalID uuid.UUID, amount *decimal.Decimal) (*domain.MonthlyGoalPlan, error) {
	plan, err := s.loadDraft(ctx, monthLabel, goalID)
	if err != nil {
		return nil, err
	}

	plan.CustomAmount = amount
	if amount != nil {
		plan.IsSkipped = false
	}
	return s.save(ctx, plan)
}

// ApplyFlexAdjustment scales the month's flexible plans by the factor and
// persists the adjusted amounts as custom overrides.
//
// Rejected with ErrPlanFrozen when any plan for the month has left DRAFT:
// once execution starts, the month's planning is frozen. A factor of exactly
// 1.0 (within epsilon) instead clears the overrides of all non-protected,
// non-skipped plans, reverting them to their base requirement.
func (s *Service) ApplyFlexAdjustment(
	ctx context.Context,
	monthLabel string,
	factor float64,
	strategy domain.RedistributionStrategy,
	requirements []domain.MonthlyRequirement,
) ([]domain.AdjustedRequirement, error) {
	plans, err := s.PlanRepo.ListByMonth(ctx, monthLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for %s: %w", monthLabel, err)
	}

	byGoal := make(map[uuid.UUID]*domain.MonthlyGoalPlan, len(plans))
	for _, plan := range plans {
		if plan.State != domain.PlanDraft {
			return nil, fmt.Errorf("month %s: %w", monthLabel, domain.ErrPlanFrozen)
		}
		byGoal[plan.GoalID] = plan
	}

	if flexadjust.IsNeutralFactor(factor) {
		for _, plan := range plans {
			if plan.IsProtected || plan.IsSkipped || plan.CustomAmount == nil {
				continue
			}
			plan.CustomAmount = nil
			if _, err := s.save(ctx, plan); err != nil {
				return nil, err
			}
		}
		return flexadjust.Apply(requirements, factor, protectedSet(plans), skippedSet(plans), strategy), nil
	}

	adjusted := flexadjust.Apply(requirements, factor, protectedSet(plans), skippedSet(plans), strategy)

	for _, adj := range adjusted {
		if adj.IsProtected || adj.IsSkipped {
			continue
		}
		plan, ok := byGoal[adj.Requirement.GoalID]
		if !ok {
			continue
		}

		if adj.AdjustedAmount.LessThanOrEqual(decimal.Zero) {
			plan.CustomAmount = nil
		} else {
			amount := adj.AdjustedAmount
			plan.CustomAmount = &amount
		}
		if _, err := s.save(ctx, plan); err != nil {
			return nil, err
		}
	}

	return adjusted, nil
}

// loadDraft fetches a plan row and rejects mutation once the month has left
// DRAFT.
func (s *Service) loadDraft(ctx context.Context, monthLabel string, goalID uuid.UUID) (*domain.MonthlyGoalPlan, error) {
	plan, err := s.PlanRepo.GetByGoalAndMonth(ctx, goalID, monthLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for goal %s in %s: %w", goalID, monthLabel, err)
	}
	if plan.State != domain.PlanDraft {
		return nil, fmt.Errorf("month %s: %w", monthLabel, domain.ErrPlanFrozen)
	}
	return plan, nil
}

func (s *Service) save(ctx context.Context, plan *domain.MonthlyGoalPlan) (*domain.MonthlyGoalPlan, error) {
	plan.UpdatedAt = s.Clock.Now()
	if err := s.PlanRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
	}
	return plan, nil
}

func protectedSet(plans []*domain.MonthlyGoalPlan) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(plans))
	for _, p := range plans {
		if p.IsProtected {
			set[p.GoalID] = true
		}
	}
	return set
}

func skippedSet(plans []*domain.MonthlyGoalPlan) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(plans))
	for _, p := range plans {
		if p.IsSkipped {
			set[p.GoalID] = true
		}
	}
	return set
}
