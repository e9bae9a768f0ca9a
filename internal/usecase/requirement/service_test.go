package requirement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/goalflow-backend/internal/domain"
)

// MockGoalRepository is a mock implementation of GoalRepository for testing
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) List(ctx context.Context, statusFilter domain.LifecycleStatus) ([]*domain.Goal, error) {
	args := m.Called(ctx, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

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

// MockSettingsStore is a mock implementation of SettingsStore for testing
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

// fixedClock is a Clock pinned to a known instant
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(funding *MockFundingCalculator, rates *MockRateProvider, settings *MockSettingsStore, now time.Time) *Service {
	return NewService(new(MockGoalRepository), funding, rates, fixedClock{now: now}, settings)
}

func activeGoal(name string, target int64, deadline time.Time) *domain.Goal {
	return &domain.Goal{
		ID:           uuid.New(),
		Name:         name,
		Currency:     "EUR",
		TargetAmount: decimal.NewFromInt(target),
		Deadline:     deadline,
		StartDate:    deadline.AddDate(-2, 0, 0),
		Status:       domain.GoalActive,
	}
}

func TestCalculateForGoal_SpreadsRemainingOverPeriods(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	goal := activeGoal("Car", 12000, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", ctx, goal).Return(decimal.Zero, nil)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", ctx).Return(15, nil)

	svc := newTestService(funding, new(MockRateProvider), settings, now)
	req, err := svc.CalculateForGoal(ctx, goal)

	require.NoError(t, err)
	assert.Equal(t, 12, req.MonthsRemaining)
	assert.True(t, req.RequiredMonthly.Equal(decimal.NewFromInt(1000)))
	assert.True(t, req.RemainingAmount.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, domain.StatusOnTrack, req.Status)

	// required * periods recovers the full remaining amount
	product := req.RequiredMonthly.Mul(decimal.NewFromInt(int64(req.MonthsRemaining)))
	assert.True(t, product.Sub(req.RemainingAmount).Abs().LessThan(decimal.RequireFromString("0.01")))
}

func TestCalculateForGoal_OverfundedIsCompleted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	goal := activeGoal("Vacation", 5000, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", ctx, goal).Return(decimal.NewFromInt(6000), nil)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", ctx).Return(1, nil)

	svc := newTestService(funding, new(MockRateProvider), settings, now)
	req, err := svc.CalculateForGoal(ctx, goal)

	require.NoError(t, err)
	assert.True(t, req.RemainingAmount.IsZero())
	assert.True(t, req.RequiredMonthly.IsZero())
	assert.True(t, req.Progress.Equal(decimal.NewFromInt(1)), "progress capped at 1")
	assert.Equal(t, domain.StatusCompleted, req.Status)
}

func TestCalculateForGoal_StatusThresholds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) // 2 periods

	tests := []struct {
		name   string
		target int64
		want   domain.RequirementStatus
	}{
		{name: "required above 10000 is critical", target: 30000, want: domain.StatusCritical},
		{name: "required above 5000 needs attention", target: 12000, want: domain.StatusAttention},
		{name: "required at modest level is on track", target: 2000, want: domain.StatusOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := activeGoal("Goal", tt.target, deadline)
			funding := new(MockFundingCalculator)
			funding.On("FundedInGoalCurrency", ctx, goal).Return(decimal.Zero, nil)
			settings := new(MockSettingsStore)
			settings.On("PaymentDay", ctx).Return(15, nil)

			svc := newTestService(funding, new(MockRateProvider), settings, now)
			req, err := svc.CalculateForGoal(ctx, goal)

			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Status)
		})
	}
}

func TestCalculateForGoal_SinglePeriodLeftNeedsAttention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	goal := activeGoal("Soon", 1000, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", ctx, goal).Return(decimal.Zero, nil)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", ctx).Return(15, nil)

	svc := newTestService(funding, new(MockRateProvider), settings, now)
	req, err := svc.CalculateForGoal(ctx, goal)

	require.NoError(t, err)
	assert.Equal(t, 1, req.MonthsRemaining)
	assert.Equal(t, domain.StatusAttention, req.Status)
}

func TestCalculateAll_OnlyActiveGoals(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	goal := activeGoal("Only", 1200, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))

	goalRepo := new(MockGoalRepository)
	goalRepo.On("List", ctx, domain.GoalActive).Return([]*domain.Goal{goal}, nil)

	funding := new(MockFundingCalculator)
	funding.On("FundedInGoalCurrency", ctx, goal).Return(decimal.Zero, nil)
	settings := new(MockSettingsStore)
	settings.On("PaymentDay", ctx).Return(15, nil)

	svc := NewService(goalRepo, funding, new(MockRateProvider), fixedClock{now: now}, settings)
	reqs, err := svc.CalculateAll(ctx)

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, goal.ID, reqs[0].GoalID)
	goalRepo.AssertExpectations(t)
}

func TestCalculateTotalRequired_ConvertsToDisplayCurrency(t *testing.T) {
	ctx := context.Background()
	rates := new(MockRateProvider)
	rates.On("Rate", ctx, "USD", "EUR").Return(decimal.RequireFromString("0.5"), nil)

	svc := newTestService(new(MockFundingCalculator), rates, new(MockSettingsStore), time.Now())

	reqs := []domain.MonthlyRequirement{
		{Currency: "EUR", RequiredMonthly: decimal.NewFromInt(100)},
		{Currency: "USD", RequiredMonthly: decimal.NewFromInt(200)},
	}

	total := svc.CalculateTotalRequired(ctx, reqs, "EUR")
	assert.True(t, total.Equal(decimal.NewFromInt(200)), "100 EUR + 200 USD at 0.5")
}

func TestCalculateTotalRequired_RateFailureFallsBackOneToOne(t *testing.T) {
	ctx := context.Background()
	rates := new(MockRateProvider)
	rates.On("Rate", ctx, "USD", "EUR").Return(decimal.Zero, errors.New("rates down"))

	svc := newTestService(new(MockFundingCalculator), rates, new(MockSettingsStore), time.Now())

	reqs := []domain.MonthlyRequirement{
		{Currency: "EUR", RequiredMonthly: decimal.NewFromInt(100)},
		{Currency: "USD", RequiredMonthly: decimal.NewFromInt(200)},
	}

	total := svc.CalculateTotalRequired(ctx, reqs, "EUR")
	assert.True(t, total.Equal(decimal.NewFromInt(300)), "unconverted amount added 1:1")
}
