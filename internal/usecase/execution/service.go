package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Service drives the execution session state machine: DRAFT -> EXECUTING
// (funding snapshot taken) -> CLOSED (outcomes frozen), with 24h undo windows
// for both transitions.
type Service struct {
	ExecutionRepo domain.ExecutionRepository
	GoalRepo      domain.GoalRepository
	PlanRepo      domain.PlanRepository
	Funding       domain.FundingCalculator
	Clock         domain.Clock
}

// NewService creates a new execution Service instance
func NewService(
	executionRepo domain.ExecutionRepository,
	goalRepo domain.GoalRepository,
	planRepo domain.PlanRepository,
	funding domain.FundingCalculator,
	clock domain.Clock,
) *Service {
	return &Service{
		ExecutionRepo: executionRepo,
		GoalRepo:      goalRepo,
		PlanRepo:      planRepo,
		Funding:       funding,
		Clock:         clock,
	}
}

// Start begins tracking a month. It takes a funding snapshot of every active
// goal at this moment and creates an EXECUTING record. Fails with
// ErrExecutionActive while another record is EXECUTING; the month's plan rows
// are moved out of DRAFT so further flex adjustments are rejected.
func (s *Service) Start(ctx context.Context, monthLabel string) (*domain.ExecutionRecord, error) {
	if _, err := s.ExecutionRepo.GetExecuting(ctx); err == nil {
		return nil, fmt.Errorf("cannot start %s: %w", monthLabel, domain.ErrExecutionActive)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for active execution: %w", err)
	}

	goals, err := s.GoalRepo.List(ctx, domain.GoalActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}

	now := s.Clock.Now()
	record := &domain.ExecutionRecord{
		ID:              uuid.New(),
		MonthLabel:      monthLabel,
		Status:          domain.ExecutionExecuting,
		StartedAtMillis: now.UnixMilli(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	snapshots := make([]domain.GoalSnapshot, 0, len(goals))
	for _, goal := range goals {
		baseline, err := s.Funding.FundedInGoalCurrency(ctx, goal)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot funding for goal %s: %w", goal.ID, err)
		}

		planned := decimal.Zero
		plan, err := s.PlanRepo.GetByGoalAndMonth(ctx, goal.ID, monthLabel)
		switch {
		case err == nil:
			planned = plan.EffectiveAmount()
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to load plan for goal %s: %w", goal.ID, err)
		}

		snapshots = append(snapshots, domain.GoalSnapshot{
			ID:             uuid.New(),
			RecordID:       record.ID,
			GoalID:         goal.ID,
			GoalName:       goal.Name,
			Currency:       goal.Currency,
			BaselineFunded: baseline,
			PlannedAmount:  planned,
		})
	}

	if err := s.ExecutionRepo.Create(ctx, record, snapshots); err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}
	if err := s.setPlanState(ctx, monthLabel, domain.PlanExecuting); err != nil {
		return nil, err
	}

	return record, nil
}

// Session builds the live view of the month in progress: each goal's current
// funded amount recomputed and compared against the frozen baseline.
func (s *Service) Session(ctx context.Context) (*domain.ExecutionSession, error) {
	record, err := s.ExecutionRepo.GetExecuting(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotExecuting
		}
		return nil, fmt.Errorf("failed to load active execution: %w", err)
	}

	snapshots, err := s.ExecutionRepo.ListSnapshots(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	session := &domain.ExecutionSession{
		Record:           *record,
		TotalPlanned:     decimal.Zero,
		TotalContributed: decimal.Zero,
	}

	for _, snap := range snapshots {
		progress, err := s.goalProgress(ctx, snap)
		if err != nil {
			return nil, err
		}
		session.Entries = append(session.Entries, *progress)
		session.TotalPlanned = session.TotalPlanned.Add(snap.PlannedAmount)
		session.TotalContributed = session.TotalContributed.Add(progress.Contributed)
	}

	session.ProgressPct = progressPct(session.TotalContributed, session.TotalPlanned)
	return session, nil
}

// Complete freezes the month: one CompletedExecution row and one
// AllocationHistory entry per goal, then the record transitions to CLOSED
// with a 24h undo window.
func (s *Service) Complete(ctx context.Context) (*domain.ExecutionRecord, error) {
	record, err := s.ExecutionRepo.GetExecuting(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotExecuting
		}
		return nil, fmt.Errorf("failed to load active execution: %w", err)
	}

	snapshots, err := s.ExecutionRepo.ListSnapshots(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	now := s.Clock.Now()
	undoUntil := now.Add(domain.UndoWindow).UnixMilli()

	completed := make([]domain.CompletedExecution, 0, len(snapshots))
	history := make([]domain.AllocationHistory, 0, len(snapshots))
	for _, snap := range snapshots {
		progress, err := s.goalProgress(ctx, snap)
		if err != nil {
			return nil, err
		}

		completed = append(completed, domain.CompletedExecution{
			ID:                 uuid.New(),
			RecordID:           record.ID,
			GoalID:             snap.GoalID,
			MonthLabel:         record.MonthLabel,
			BaselineFunded:     snap.BaselineFunded,
			RequiredAmount:     snap.PlannedAmount,
			ActualFunded:       progress.CurrentFunded,
			CanUndoUntilMillis: undoUntil,
		})
		history = append(history, domain.AllocationHistory{
			ID:               uuid.New(),
			RecordID:         record.ID,
			GoalID:           snap.GoalID,
			MonthLabel:       record.MonthLabel,
			Amount:           progress.Contributed,
			RecordedAtMillis: now.UnixMilli(),
		})
	}

	record.Status = domain.ExecutionClosed
	record.ClosedAtMillis = now.UnixMilli()
	record.CanUndoUntilMillis = undoUntil
	record.UpdatedAt = now
	if err := s.ExecutionRepo.SaveCompletion(ctx, record, completed, history); err != nil {
		return nil, fmt.Errorf("failed to persist completion: %w", err)
	}

	if err := s.setPlanState(ctx, record.MonthLabel, domain.PlanClosed); err != nil {
		return nil, err
	}
	return record, nil
}

// UndoStart reverts an EXECUTING record back to DRAFT, discarding its
// snapshots. Only allowed within 24h of starting.
func (s *Service) UndoStart(ctx context.Context) (*domain.ExecutionRecord, error) {
	record, err := s.ExecutionRepo.GetExecuting(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotExecuting
		}
		return nil, fmt.Errorf("failed to load active execution: %w", err)
	}

	now := s.Clock.Now()
	if !record.CanUndoStart(now) {
		return nil, fmt.Errorf("execution %s: %w", record.ID, domain.ErrUndoWindowExpired)
	}

	if err := s.ExecutionRepo.DeleteSnapshots(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to discard snapshots: %w", err)
	}

	record.Status = domain.ExecutionDraft
	record.StartedAtMillis = 0
	record.UpdatedAt = now
	if err := s.ExecutionRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to revert execution record: %w", err)
	}

	if err := s.setPlanState(ctx, record.MonthLabel, domain.PlanDraft); err != nil {
		return nil, err
	}
	return record, nil
}

// UndoCompletion reverts a CLOSED record back to EXECUTING, removing the
// completion and history rows. Only allowed within the record's undo window.
func (s *Service) UndoCompletion(ctx context.Context, recordID uuid.UUID) (*domain.ExecutionRecord, error) {
	record, err := s.ExecutionRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load execution record %s: %w", recordID, err)
	}

	if record.Status != domain.ExecutionClosed {
		return nil, fmt.Errorf("execution %s is %s: %w", record.ID, record.Status, domain.ErrInvalidState)
	}

	now := s.Clock.Now()
	if !record.CanUndoCompletion(now) {
		return nil, fmt.Errorf("execution %s: %w", record.ID, domain.ErrUndoWindowExpired)
	}

	if err := s.ExecutionRepo.DeleteCompleted(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to remove completion rows: %w", err)
	}
	if err := s.ExecutionRepo.DeleteHistory(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to remove allocation history: %w", err)
	}

	record.Status = domain.ExecutionExecuting
	record.ClosedAtMillis = 0
	record.CanUndoUntilMillis = 0
	record.UpdatedAt = now
	if err := s.ExecutionRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to reopen execution record: %w", err)
	}

	if err := s.setPlanState(ctx, record.MonthLabel, domain.PlanExecuting); err != nil {
		return nil, err
	}
	return record, nil
}

// History returns the frozen per-goal outcomes of a closed execution record.
func (s *Service) History(ctx context.Context, recordID uuid.UUID) (*domain.ExecutionRecord, []domain.CompletedExecution, error) {
	record, err := s.ExecutionRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load execution record %s: %w", recordID, err)
	}

	if record.Status != domain.ExecutionClosed {
		return nil, nil, fmt.Errorf("execution %s is %s: %w", record.ID, record.Status, domain.ErrInvalidState)
	}

	completed, err := s.ExecutionRepo.ListCompleted(ctx, record.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list completed executions: %w", err)
	}
	return record, completed, nil
}

// goalProgress recomputes one goal's live funded amount against its snapshot.
func (s *Service) goalProgress(ctx context.Context, snap domain.GoalSnapshot) (*domain.GoalExecutionProgress, error) {
	goal, err := s.GoalRepo.GetByID(ctx, snap.GoalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %s: %w", snap.GoalID, err)
	}

	current, err := s.Funding.FundedInGoalCurrency(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to compute funded total for goal %s: %w", goal.ID, err)
	}

	contributed := current.Sub(snap.BaselineFunded)
	if contributed.LessThan(decimal.Zero) {
		contributed = decimal.Zero
	}

	return &domain.GoalExecutionProgress{
		Snapshot:      snap,
		CurrentFunded: current,
		Contributed:   contributed,
		IsFulfilled:   contributed.GreaterThanOrEqual(snap.PlannedAmount),
		ProgressPct:   progressPct(contributed, snap.PlannedAmount),
	}, nil
}

// progressPct is contributed/planned as a percentage capped at 100.
// A zero planned amount counts as fully progressed.
func progressPct(contributed, planned decimal.Decimal) decimal.Decimal {
	if planned.LessThanOrEqual(decimal.Zero) {
		return hundred
	}
	pct := contributed.Div(planned).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// setPlanState moves every plan row of the month to the given state, keeping
// the plan freeze invariant in lockstep with the execution lifecycle.
func (s *Service) setPlanState(ctx context.Context, monthLabel string, state domain.PlanState) error {
	plans, err := s.PlanRepo.ListByMonth(ctx, monthLabel)
	if err != nil {
		return fmt.Errorf("failed to list plans for %s: %w", monthLabel, err)
	}
	now := s.Clock.Now()
	for _, plan := range plans {
		plan.State = state
		plan.UpdatedAt = now
		if err := s.PlanRepo.Update(ctx, plan); err != nil {
			return fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
		}
	}
	return nil
}
