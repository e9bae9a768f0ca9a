package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalflow-backend/internal/adapter/rates"
	"github.com/simaogato/goalflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/goalflow-backend/internal/config"
	"github.com/simaogato/goalflow-backend/internal/domain"
	"github.com/simaogato/goalflow-backend/internal/usecase/execution"
	"github.com/simaogato/goalflow-backend/internal/usecase/funding"
	"github.com/simaogato/goalflow-backend/internal/usecase/plansync"
	"github.com/simaogato/goalflow-backend/internal/usecase/requirement"
	"github.com/simaogato/goalflow-backend/internal/usecase/scheduler"
)

var flagMonth string

var rootCmd = &cobra.Command{
	Use:           "goalflow",
	Short:         "Savings goal planning and execution",
	Long:          "Plan monthly contributions toward savings goals, generate fixed-budget schedules and track a month's execution.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMonth, "month", "", "Month label (YYYY-MM, default: current month)")
}

// app bundles the wired repositories and services shared by all commands.
type app struct {
	db *postgres.DB

	goalRepo      domain.GoalRepository
	assetRepo     domain.AssetRepository
	txRepo        domain.AssetTransactionRepository
	allocRepo     domain.AllocationRepository
	planRepo      domain.PlanRepository
	executionRepo domain.ExecutionRepository
	settings      domain.SettingsStore
	clock         domain.Clock

	requirements *requirement.Service
	planSync     *plansync.Service
	scheduler    *scheduler.Service
	execution    *execution.Service
}

// buildApp loads config, connects to postgres and wires every service.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.Database.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clock := domain.SystemClock{}

	var rateProvider domain.RateProvider = noRates{}
	if cfg.Rates.Endpoint != "" {
		rateProvider = rates.NewClient(cfg.Rates.Endpoint, cfg.Rates.CacheTTL, clock)
	} else {
		log.Println("no rates endpoint configured; cross-currency conversions will fall back")
	}

	a := &app{
		db:            db,
		goalRepo:      postgres.NewGoalRepository(db),
		assetRepo:     postgres.NewAssetRepository(db),
		txRepo:        postgres.NewAssetTransactionRepository(db),
		allocRepo:     postgres.NewAllocationRepository(db),
		planRepo:      postgres.NewPlanRepository(db),
		executionRepo: postgres.NewExecutionRepository(db),
		settings:      postgres.NewSettingsRepository(db),
		clock:         clock,
	}

	calc := funding.NewCalculator(a.assetRepo, a.allocRepo, a.txRepo, nil, rateProvider)

	a.requirements = requirement.NewService(a.goalRepo, calc, rateProvider, clock, a.settings)
	a.planSync = plansync.NewService(a.planRepo, clock)
	a.scheduler = scheduler.NewService(calc, rateProvider, clock, a.settings)
	a.execution = execution.NewService(a.executionRepo, a.goalRepo, a.planRepo, calc, clock)

	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}

// month returns the requested month label, defaulting to the current month.
func (a *app) month() string {
	if flagMonth != "" {
		return flagMonth
	}
	return domain.MonthLabel(a.clock.Now())
}

// noRates is the RateProvider used when no endpoint is configured: every
// cross-currency lookup fails so callers use their local fallbacks.
type noRates struct{}

func (noRates) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, fmt.Errorf("no rate provider configured for %s->%s", from, to)
}
