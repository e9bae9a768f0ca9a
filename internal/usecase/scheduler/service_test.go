package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/goalflow-backend/internal/domain"
)

// MockFundingCalculator is a mock implementation of FundingCalculator for testing
type MockFundingCalculator struct {
	mock.Mock
}

func (m *MockFundingCalculator) FundedInGoalCurrency(ctx context.Context, goal *domain.Goal) (decimal.Decimal, error) {
	args := m.Called(ctx, goal)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockRateProvider is a mock implementation of RateProvider for testing
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockSettingsStore only needs the payment day here; the rest delegates to mock.Mock
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) PaymentDay(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSettingsStore) SetPaymentDay(ctx context.Context, day int) error {
	args := m.Called(ctx, day)
	return args.Error(0)
}

func (m *MockSettingsStore) DisplayCurrency(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsStore) SetDisplayCurrency(ctx context.Context, currency string) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockSettingsStore) FlexFactor(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettingsStore) SetFlexFactor(ctx context.Context, factor float64) error {
	args := m.Called(ctx, factor)
	return args.Error(0)
}

func (m *MockSettingsStore) Mode(ctx context.Context) (domain.PlanningMode, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PlanningMode), args.Error(1)
}

func (m *MockSettingsStore) SetMode(ctx context.Context, mode domain.PlanningMode) error {
	args := m.Called(ctx, mode)
	return args.Error(0)
}

func (m *MockSettingsStore) MonthlyBudget(ctx context.Context) (decimal.Decimal, string, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.String(1), args.Error(2)
}

func (m *MockSettingsStore) SetMonthlyBudget(ctx context.Context, amount decimal.Decimal, currency string) error {
	args := m.Called(ctx, amount, currency)
	return args.Error(0)
}

// adjustableClock lets a test move time forward between calls
type adjustableClock struct {
	now time.Time
}

func (c *adjustableClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func activeGoal(name string, target int64, deadline time.Time) *domain.Goal {
	return &domain.Goal{
		ID:           uuid.New(),
		Name:         name,
		Currency:     "EUR",
		TargetAmount: decimal.NewFromInt(target),
		Deadline:     deadline,
		StartDate:    testNow.AddDate(-1, 0, 0),
		Status:       domain.GoalActive,
	}
}

func newTestService(goals []*domain.Goal, clock domain.Clock) *Service {
	funding := new(MockFundingCalculator)
	for _, g := range goals {
		funding.On("FundedInGoalCurrency", mock.Anything, g).Return(decimal.Zero, nil)
	}
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", mock.Anything).Return(15, nil)
	return NewService(funding, new(MockRateProvider), clock, settings)
}

func TestGenerateSchedule_SingleGoalExactRunway(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{goal}, &adjustableClock{now: testNow})

	plan, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, decimal.NewFromInt(100), "EUR")

	require.NoError(t, err)
	require.Len(t, plan.Schedule, 12, "1200 at 100/month is exactly 12 payments")
	assert.True(t, plan.IsLeveled)

	first := plan.Schedule[0]
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), first.Date)
	require.Len(t, first.Contributions, 1)
	assert.True(t, first.Contributions[0].IsGoalStart)

	last := plan.Schedule[11]
	assert.True(t, last.Contributions[0].IsGoalComplete)
	assert.True(t, last.CumulativeAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, plan.GoalRemaining[goal.ID].IsZero())
}

func TestGenerateSchedule_WaterfallFundsEarlierDeadlineFirst(t *testing.T) {
	ctx := context.Background()
	early := activeGoal("Early", 150, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	late := activeGoal("Late", 500, time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{early, late}, &adjustableClock{now: testNow})

	plan, err := svc.GenerateSchedule(ctx, []*domain.Goal{late, early}, decimal.NewFromInt(100), "EUR")

	require.NoError(t, err)
	require.NotEmpty(t, plan.Schedule)

	// Payment 1: all 100 to Early. Payment 2: 50 to Early, 50 to Late.
	first := plan.Schedule[0]
	require.Len(t, first.Contributions, 1)
	assert.Equal(t, early.ID, first.Contributions[0].GoalID)
	assert.True(t, first.Contributions[0].Amount.Equal(decimal.NewFromInt(100)))

	second := plan.Schedule[1]
	require.Len(t, second.Contributions, 2)
	assert.Equal(t, early.ID, second.Contributions[0].GoalID)
	assert.True(t, second.Contributions[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, second.Contributions[0].IsGoalComplete)
	assert.Equal(t, late.ID, second.Contributions[1].GoalID)
	assert.True(t, second.Contributions[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, second.Contributions[1].IsGoalStart)
}

func TestGenerateSchedule_NonPositiveBudget(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{goal}, &adjustableClock{now: testNow})

	plan, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, decimal.Zero, "EUR")

	require.NoError(t, err)
	assert.Empty(t, plan.Schedule)
	assert.False(t, plan.IsLeveled)
	assert.True(t, plan.MinimumRequired.GreaterThan(decimal.Zero))
	assert.True(t, plan.GoalRemaining[goal.ID].Equal(decimal.NewFromInt(1200)))
}

func TestGenerateSchedule_SkipsGoalsPastDeadline(t *testing.T) {
	ctx := context.Background()
	passed := activeGoal("Missed", 500, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{passed}, &adjustableClock{now: testNow})

	// First payment date (Jan 15) is already past the deadline: nothing can
	// ever be funded and the schedule stays empty.
	plan, err := svc.GenerateSchedule(ctx, []*domain.Goal{passed}, decimal.NewFromInt(100), "EUR")

	require.NoError(t, err)
	assert.Empty(t, plan.Schedule)
	assert.True(t, plan.GoalRemaining[passed.ID].Equal(decimal.NewFromInt(500)))
}

func TestGenerateSchedule_CacheHitAndExpiry(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	clock := &adjustableClock{now: testNow}

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", mock.Anything, goal).Return(decimal.Zero, nil)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", mock.Anything).Return(15, nil)
	svc := NewService(funding, new(MockRateProvider), clock, settings)

	budget := decimal.NewFromInt(100)
	first, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, budget, "EUR")
	require.NoError(t, err)

	// Within the TTL the identical request is served from cache.
	clock.now = testNow.Add(time.Minute)
	second, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, budget, "EUR")
	require.NoError(t, err)
	assert.Same(t, first, second)
	funding.AssertNumberOfCalls(t, "FundedInGoalCurrency", 1)

	// A different budget misses the cache.
	other, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, decimal.NewFromInt(200), "EUR")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	// After the TTL even identical inputs recompute.
	clock.now = testNow.Add(10 * time.Minute)
	third, err := svc.GenerateSchedule(ctx, []*domain.Goal{goal}, budget, "EUR")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestCalculateMinimumBudget_CumulativeConstraint(t *testing.T) {
	ctx := context.Background()
	// Early: 600 remaining over 5 periods. Late: 600 more over 12 periods;
	// cumulative 1200/12 = 100 < 600/5 = 120, so Early binds.
	early := activeGoal("Early", 600, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	late := activeGoal("Late", 600, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{early, late}, &adjustableClock{now: testNow})

	minimum, err := svc.CalculateMinimumBudget(ctx, []*domain.Goal{early, late}, "EUR")

	require.NoError(t, err)
	assert.True(t, minimum.Equal(decimal.NewFromInt(120)), "got %s", minimum)
}

func TestCheckFeasibility_FeasibleBudget(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{goal}, &adjustableClock{now: testNow})

	result, err := svc.CheckFeasibility(ctx, []*domain.Goal{goal}, decimal.NewFromInt(100), "EUR")

	require.NoError(t, err)
	assert.True(t, result.IsFeasible)
	assert.Empty(t, result.InfeasibleGoals)
	assert.Empty(t, result.Suggestions)
}

func TestCheckFeasibility_ZeroBudgetNeverFeasible(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{goal}, &adjustableClock{now: testNow})

	result, err := svc.CheckFeasibility(ctx, []*domain.Goal{goal}, decimal.Zero, "EUR")

	require.NoError(t, err)
	assert.False(t, result.IsFeasible)
}

func TestCheckFeasibility_SuggestionsForFirstBindingGoal(t *testing.T) {
	ctx := context.Background()
	// 1200 remaining over 6 periods needs 200/month; a 100 budget is short.
	goal := activeGoal("Car", 1200, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{goal}, &adjustableClock{now: testNow})

	result, err := svc.CheckFeasibility(ctx, []*domain.Goal{goal}, decimal.NewFromInt(100), "EUR")

	require.NoError(t, err)
	require.False(t, result.IsFeasible)
	require.Len(t, result.InfeasibleGoals, 1)
	assert.True(t, result.InfeasibleGoals[0].Shortfall.Equal(decimal.NewFromInt(100)))

	var extend *domain.ExtendDeadlineSuggestion
	var reduce *domain.ReduceTargetSuggestion
	var edit *domain.EditGoalSuggestion
	var increase *domain.IncreaseBudgetSuggestion
	for _, s := range result.Suggestions {
		switch fix := s.(type) {
		case domain.ExtendDeadlineSuggestion:
			extend = &fix
		case domain.ReduceTargetSuggestion:
			reduce = &fix
		case domain.EditGoalSuggestion:
			edit = &fix
		case domain.IncreaseBudgetSuggestion:
			increase = &fix
		}
	}

	require.NotNil(t, extend)
	assert.Equal(t, 6, extend.Months, "1200/100 = 12 periods, 6 more than available")

	require.NotNil(t, reduce)
	assert.True(t, reduce.NewTarget.Equal(decimal.NewFromInt(600)), "shortfall 100 over 6 periods")

	assert.NotNil(t, edit)
	require.NotNil(t, increase)
	assert.True(t, increase.MinimumRequired.Equal(decimal.NewFromInt(200)))
}

func TestBuildTimelineBlocks(t *testing.T) {
	ctx := context.Background()
	early := activeGoal("Early", 150, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	late := activeGoal("Late", 500, time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService([]*domain.Goal{early, late}, &adjustableClock{now: testNow})

	plan, err := svc.GenerateSchedule(ctx, []*domain.Goal{early, late}, decimal.NewFromInt(100), "EUR")
	require.NoError(t, err)

	blocks := svc.BuildTimelineBlocks(plan, []*domain.Goal{early, late})

	require.Len(t, blocks, 2)
	assert.Equal(t, early.ID, blocks[0].GoalID)
	assert.Equal(t, 1, blocks[0].FirstPayment)
	assert.Equal(t, 2, blocks[0].LastPayment)
	assert.True(t, blocks[0].TotalAmount.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, late.ID, blocks[1].GoalID)
	assert.Equal(t, 2, blocks[1].FirstPayment)
	assert.True(t, blocks[1].TotalAmount.Equal(decimal.NewFromInt(500)))
}

func TestGoalStates_RateFailureFallsBackUnconverted(t *testing.T) {
	ctx := context.Background()
	goal := activeGoal("Car", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	goal.Currency = "USD"

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", mock.Anything, goal).Return(decimal.Zero, nil)
	rates := new(MockRateProvider)
	rates.On("Rate", mock.Anything, "USD", "EUR").Return(decimal.Zero, assert.AnError)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", mock.Anything).Return(15, nil)

	svc := NewService(funding, rates, &adjustableClock{now: testNow}, settings)
	states, err := svc.goalStates(ctx, []*domain.Goal{goal}, "EUR")

	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.True(t, states[0].remaining.Equal(decimal.NewFromInt(1200)), "unconverted fallback")
	assert.Nil(t, states[0].rate)
}

func TestGoalStates_IgnoresInactiveGoals(t *testing.T) {
	ctx := context.Background()
	cancelled := activeGoal("Old", 100, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	cancelled.Status = domain.GoalCancelled

	svc := newTestService(nil, &adjustableClock{now: testNow})
	states, err := svc.goalStates(ctx, []*domain.Goal{cancelled}, "EUR")

	require.NoError(t, err)
	assert.Empty(t, states)
}
