package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

const (
	// maxPeriods bounds schedule simulation against non-terminating inputs,
	// e.g. a budget too small to ever exhaust the goals' remaining amounts.
	maxPeriods = 600

	// cacheTTL is how long a generated plan stays valid for identical inputs.
	cacheTTL = 5 * time.Minute
)

// amountEpsilon treats residual amounts at or below a cent as exhausted.
var amountEpsilon = decimal.RequireFromString("0.01")

// planCache is a single-slot cache keyed by (goal set, budget, currency).
type planCache struct {
	mu    sync.Mutex
	key   string
	plan  *domain.SchedulePlan
	saved time.Time
}

// Service generates forward payment schedules under a fixed total monthly
// budget, waterfall-allocated across goals in deadline order.
type Service struct {
	Funding  domain.FundingCalculator
	Rates    domain.RateProvider
	Clock    domain.Clock
	Settings domain.SettingsStore

	cache planCache
}

// NewService creates a new scheduler Service instance
func NewService(
	funding domain.FundingCalculator,
	rates domain.RateProvider,
	clock domain.Clock,
	settings domain.SettingsStore,
) *Service {
	return &Service{
		Funding:  funding,
		Rates:    rates,
		Clock:    clock,
		Settings: settings,
	}
}

// goalState is one goal's remaining balance in the schedule currency, plus
// the rate used for the conversion (for converting suggestions back).
type goalState struct {
	goal      *domain.Goal
	remaining decimal.Decimal
	rate      *decimal.Decimal // nil when no conversion was needed
	started   bool
}

// GenerateSchedule simulates successive payment dates, allocating the budget
// across active goals in deadline order until every goal is funded or the
// safety period bound is hit. Results are cached for a short window so rapid
// refreshes with identical inputs do not recompute.
func (s *Service) GenerateSchedule(ctx context.Context, goals []*domain.Goal, monthlyBudget decimal.Decimal, currency string) (*domain.SchedulePlan, error) {
	key := cacheKey(goals, monthlyBudget, currency)
	now := s.Clock.Now()
	if plan := s.cachedPlan(key, now); plan != nil {
		return plan, nil
	}

	states, err := s.goalStates(ctx, goals, currency)
	if err != nil {
		return nil, err
	}

	paymentDay, err := s.Settings.PaymentDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment day: %w", err)
	}

	minimum := minimumBudget(states, now, paymentDay)

	plan := &domain.SchedulePlan{
		Schedule:        []domain.ScheduledPayment{},
		MinimumRequired: minimum,
		MonthlyBudget:   monthlyBudget,
		Currency:        currency,
		GoalRemaining:   make(map[uuid.UUID]decimal.Decimal, len(states)),
	}

	if monthlyBudget.LessThanOrEqual(decimal.Zero) {
		for _, st := range states {
			plan.GoalRemaining[st.goal.ID] = st.remaining
		}
		s.storePlan(key, plan, now)
		return plan, nil
	}

	plan.IsLeveled = monthlyBudget.GreaterThanOrEqual(minimum)

	cumulative := decimal.Zero
	date := domain.NextPaymentDate(now, paymentDay)

	for period := 1; period <= maxPeriods; period++ {
		if allExhausted(states) {
			break
		}

		payment := domain.ScheduledPayment{
			PaymentNumber: period,
			Date:          date,
			TotalAmount:   decimal.Zero,
		}

		periodBudget := monthlyBudget
		for _, st := range states {
			if st.remaining.LessThanOrEqual(amountEpsilon) {
				continue
			}
			// A goal whose deadline already passed no longer receives funds
			if st.goal.Deadline.Before(date) {
				continue
			}

			alloc := decimal.Min(periodBudget, st.remaining)
			contribution := domain.GoalContribution{
				GoalID:         st.goal.ID,
				GoalName:       st.goal.Name,
				Amount:         alloc,
				IsGoalStart:    !st.started,
				IsGoalComplete: st.remaining.Sub(alloc).LessThanOrEqual(amountEpsilon),
			}
			st.started = true
			st.remaining = st.remaining.Sub(alloc)
			periodBudget = periodBudget.Sub(alloc)

			payment.Contributions = append(payment.Contributions, contribution)
			payment.TotalAmount = payment.TotalAmount.Add(alloc)

			if periodBudget.LessThanOrEqual(amountEpsilon) {
				break
			}
		}

		// Nothing fundable this period (every open goal's deadline has
		// passed): the simulation can never progress, stop here.
		if len(payment.Contributions) == 0 {
			break
		}

		cumulative = cumulative.Add(payment.TotalAmount)
		payment.CumulativeAmount = cumulative
		plan.Schedule = append(plan.Schedule, payment)

		date = date.AddDate(0, 1, 0)
	}

	for _, st := range states {
		plan.GoalRemaining[st.goal.ID] = st.remaining
	}

	s.storePlan(key, plan, now)
	return plan, nil
}

// CalculateMinimumBudget returns the smallest monthly budget under which
// every goal's deadline is satisfiable by deadline-ordered waterfall
// allocation: the maximum over goals of cumulativeRemaining / monthsRemaining.
func (s *Service) CalculateMinimumBudget(ctx context.Context, goals []*domain.Goal, currency string) (decimal.Decimal, error) {
	states, err := s.goalStates(ctx, goals, currency)
	if err != nil {
		return decimal.Zero, err
	}

	paymentDay, err := s.Settings.PaymentDay(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read payment day: %w", err)
	}

	return minimumBudget(states, s.Clock.Now(), paymentDay), nil
}

func minimumBudget(states []*goalState, now time.Time, paymentDay int) decimal.Decimal {
	minimum := decimal.Zero
	cumulative := decimal.Zero
	for _, st := range states {
		cumulative = cumulative.Add(st.remaining)
		months := domain.PaymentPeriodsUntil(now, st.goal.Deadline, paymentDay)
		required := cumulative.Div(decimal.NewFromInt(int64(months)))
		if required.GreaterThan(minimum) {
			minimum = required
		}
	}
	return minimum
}

// CheckFeasibility reports whether the budget can meet every goal deadline.
// When it cannot, each binding goal is reported with its shortfall, and the
// first one receives quick-fix suggestions.
func (s *Service) CheckFeasibility(ctx context.Context, goals []*domain.Goal, budget decimal.Decimal, currency string) (*domain.FeasibilityResult, error) {
	states, err := s.goalStates(ctx, goals, currency)
	if err != nil {
		return nil, err
	}

	paymentDay, err := s.Settings.PaymentDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment day: %w", err)
	}

	now := s.Clock.Now()
	minimum := minimumBudget(states, now, paymentDay)

	result := &domain.FeasibilityResult{
		IsFeasible:      budget.GreaterThanOrEqual(minimum) && budget.GreaterThan(decimal.Zero),
		Budget:          budget,
		MinimumRequired: minimum,
	}
	if result.IsFeasible {
		return result, nil
	}

	cumulative := decimal.Zero
	for _, st := range states {
		cumulative = cumulative.Add(st.remaining)
		months := domain.PaymentPeriodsUntil(now, st.goal.Deadline, paymentDay)
		required := cumulative.Div(decimal.NewFromInt(int64(months)))
		if required.LessThanOrEqual(budget) {
			continue
		}

		shortfall := required.Sub(budget)
		result.InfeasibleGoals = append(result.InfeasibleGoals, domain.InfeasibleGoal{
			GoalID:            st.goal.ID,
			GoalName:          st.goal.Name,
			RequiredPerPeriod: required,
			Shortfall:         shortfall,
			MonthsRemaining:   months,
		})

		// Quick fixes are generated for the first binding goal only
		if len(result.InfeasibleGoals) == 1 {
			result.Suggestions = append(result.Suggestions, suggestFixes(st, cumulative, budget, shortfall, months)...)
		}
	}

	if len(result.InfeasibleGoals) > 0 {
		result.Suggestions = append(result.Suggestions, domain.IncreaseBudgetSuggestion{
			MinimumRequired: minimum,
		})
	}

	return result, nil
}

// suggestFixes proposes up to three fixes for the first infeasible goal:
// extend the deadline far enough for the budget to cover the cumulative
// remaining, reduce the target by the projected shortfall, or edit the goal.
func suggestFixes(st *goalState, cumulative, budget, shortfall decimal.Decimal, months int) []domain.Suggestion {
	var suggestions []domain.Suggestion

	if budget.GreaterThan(decimal.Zero) {
		needed := int(cumulative.Div(budget).Ceil().IntPart())
		if extra := needed - months; extra > 0 {
			suggestions = append(suggestions, domain.ExtendDeadlineSuggestion{
				GoalID: st.goal.ID,
				Months: extra,
			})
		}
	}

	// Shortfall per period projected over the remaining periods, converted
	// back to the goal's native currency with the same rate used on the way
	// in (unconverted when no rate was involved).
	reduction := shortfall.Mul(decimal.NewFromInt(int64(months)))
	if st.rate != nil && !st.rate.IsZero() {
		reduction = reduction.Div(*st.rate)
	}
	newTarget := st.goal.TargetAmount.Sub(reduction)
	if newTarget.LessThan(decimal.Zero) {
		newTarget = decimal.Zero
	}
	suggestions = append(suggestions, domain.ReduceTargetSuggestion{
		GoalID:    st.goal.ID,
		NewTarget: newTarget,
	})

	suggestions = append(suggestions, domain.EditGoalSuggestion{GoalID: st.goal.ID})
	return suggestions
}

// BuildTimelineBlocks collapses a payment-level schedule into one contiguous
// funding block per goal, ignoring contributions dated after the goal's
// deadline. Blocks are ordered by first payment.
func (s *Service) BuildTimelineBlocks(plan *domain.SchedulePlan, goals []*domain.Goal) []domain.ScheduledGoalBlock {
	deadlines := make(map[uuid.UUID]time.Time, len(goals))
	for _, g := range goals {
		deadlines[g.ID] = g.Deadline
	}

	blocks := make(map[uuid.UUID]*domain.ScheduledGoalBlock)
	order := make([]uuid.UUID, 0)

	for _, payment := range plan.Schedule {
		for _, c := range payment.Contributions {
			if deadline, ok := deadlines[c.GoalID]; ok && deadline.Before(payment.Date) {
				continue
			}

			block, ok := blocks[c.GoalID]
			if !ok {
				block = &domain.ScheduledGoalBlock{
					GoalID:       c.GoalID,
					GoalName:     c.GoalName,
					FirstPayment: payment.PaymentNumber,
					StartDate:    payment.Date,
					TotalAmount:  decimal.Zero,
				}
				blocks[c.GoalID] = block
				order = append(order, c.GoalID)
			}
			block.LastPayment = payment.PaymentNumber
			block.EndDate = payment.Date
			block.TotalAmount = block.TotalAmount.Add(c.Amount)
			block.PaymentCount++
		}
	}

	result := make([]domain.ScheduledGoalBlock, 0, len(order))
	for _, id := range order {
		result = append(result, *blocks[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].FirstPayment < result[j].FirstPayment
	})
	return result
}

// goalStates filters to active goals, resolves each remaining amount in the
// schedule currency, and orders by ascending deadline. A failed conversion
// falls back to the unconverted amount so scheduling stays usable offline.
func (s *Service) goalStates(ctx context.Context, goals []*domain.Goal, currency string) ([]*goalState, error) {
	states := make([]*goalState, 0, len(goals))
	for _, goal := range goals {
		if !goal.IsActive() {
			continue
		}

		funded, err := s.Funding.FundedInGoalCurrency(ctx, goal)
		if err != nil {
			return nil, fmt.Errorf("failed to compute funded total for goal %s: %w", goal.ID, err)
		}

		remaining := goal.TargetAmount.Sub(funded)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}

		st := &goalState{goal: goal, remaining: remaining}
		if goal.Currency != currency {
			rate, err := s.Rates.Rate(ctx, goal.Currency, currency)
			if err == nil && !rate.IsZero() {
				st.remaining = remaining.Mul(rate)
				st.rate = &rate
			}
		}
		states = append(states, st)
	}

	sort.SliceStable(states, func(i, j int) bool {
		return states[i].goal.Deadline.Before(states[j].goal.Deadline)
	})
	return states, nil
}

func allExhausted(states []*goalState) bool {
	for _, st := range states {
		if st.remaining.GreaterThan(amountEpsilon) {
			return false
		}
	}
	return true
}

func cacheKey(goals []*domain.Goal, budget decimal.Decimal, currency string) string {
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID.String())
	}
	sort.Strings(ids)
	return strings.Join(ids, ",") + "|" + budget.String() + "|" + currency
}

func (s *Service) cachedPlan(key string, now time.Time) *domain.SchedulePlan {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	if s.cache.plan == nil || s.cache.key != key {
		return nil
	}
	if now.Sub(s.cache.saved) >= cacheTTL {
		return nil
	}
	return s.cache.plan
}

func (s *Service) storePlan(key string, plan *domain.SchedulePlan, now time.Time) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.key = key
	s.cache.plan = plan
	s.cache.saved = now
}
