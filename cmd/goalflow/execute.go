package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func formatMillis(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}

var executeCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run the month's execution session",
}

var execStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start executing the month's plan",
	RunE:  runExecStart,
}

var execStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session's progress",
	RunE:  runExecStatus,
}

var execCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Close the active session and record outcomes",
	RunE:  runExecComplete,
}

var execUndoStartCmd = &cobra.Command{
	Use:   "undo-start",
	Short: "Revert an execution start within its undo window",
	RunE:  runExecUndoStart,
}

var execUndoCompleteCmd = &cobra.Command{
	Use:   "undo-complete <record-id>",
	Short: "Revert a completion within its undo window",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecUndoComplete,
}

var execHistoryCmd = &cobra.Command{
	Use:   "history <record-id>",
	Short: "Show the recorded outcomes of a closed execution",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecHistory,
}

func init() {
	executeCmd.AddCommand(execStartCmd, execStatusCmd, execCompleteCmd, execUndoStartCmd, execUndoCompleteCmd, execHistoryCmd)
	rootCmd.AddCommand(executeCmd)
}

func runExecStart(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	record, err := a.execution.Start(cmd.Context(), a.month())
	if err != nil {
		return err
	}
	fmt.Printf("started execution %s for %s\n", record.ID, record.MonthLabel)
	return nil
}

func runExecStatus(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.execution.Session(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("execution %s (%s) %s%%\n\n",
		session.Record.ID, session.Record.MonthLabel, session.ProgressPct.StringFixed(1))
	for _, entry := range session.Entries {
		state := " "
		if entry.IsFulfilled {
			state = "x"
		}
		fmt.Printf("[%s] %-24s %s / %s %s (%s%%)\n",
			state,
			entry.Snapshot.GoalName,
			entry.Contributed.StringFixed(2),
			entry.Snapshot.PlannedAmount.StringFixed(2),
			entry.Snapshot.Currency,
			entry.ProgressPct.StringFixed(1))
	}
	fmt.Printf("\ntotal: %s / %s\n",
		session.TotalContributed.StringFixed(2), session.TotalPlanned.StringFixed(2))
	return nil
}

func runExecComplete(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	record, err := a.execution.Complete(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("closed execution %s; undo available until %s\n",
		record.ID, formatMillis(record.CanUndoUntilMillis))
	return nil
}

func runExecUndoStart(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	record, err := a.execution.UndoStart(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("execution %s reverted to %s\n", record.ID, record.Status)
	return nil
}

func runExecHistory(cmd *cobra.Command, args []string) error {
	recordID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", args[0], err)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	record, completed, err := a.execution.History(cmd.Context(), recordID)
	if err != nil {
		return err
	}

	fmt.Printf("execution %s (%s) closed at %s\n\n",
		record.ID, record.MonthLabel, formatMillis(record.ClosedAtMillis))
	for _, row := range completed {
		fmt.Printf("%s  required %s  funded %s -> %s\n",
			row.GoalID,
			row.RequiredAmount.StringFixed(2),
			row.BaselineFunded.StringFixed(2),
			row.ActualFunded.StringFixed(2))
	}
	return nil
}

func runExecUndoComplete(cmd *cobra.Command, args []string) error {
	recordID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", args[0], err)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	record, err := a.execution.UndoCompletion(cmd.Context(), recordID)
	if err != nil {
		return err
	}
	fmt.Printf("execution %s reverted to %s\n", record.ID, record.Status)
	return nil
}
