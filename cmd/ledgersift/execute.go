package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersift/ledgersift/internal/reconcile"
)

func executeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Apply reviewed import decisions to the ledger",
		Long: `Read a decisions file produced by analyze (and edited by you), then
apply each decision: import, skip, merge with an existing transaction,
or replace an existing transaction.

Each run of the CLI is a fresh process, so execution resolves candidates
from the data embedded in the decisions file.`,
		RunE: runExecute,
	}

	cmd.Flags().String("decisions", "", "path to the decisions JSON file (required)")
	cmd.Flags().String("account", "", "override the account id from the decisions file")
	cmd.Flags().String("user", "", "user id recorded on imported transactions")
	_ = cmd.MarkFlagRequired("decisions")

	return cmd
}

func runExecute(cmd *cobra.Command, _ []string) error {
	decisionsPath, _ := cmd.Flags().GetString("decisions")
	accountOverride, _ := cmd.Flags().GetString("account")
	userID, _ := cmd.Flags().GetString("user")

	ctx := cmd.Context()

	doc, err := readDecisionsFile(decisionsPath)
	if err != nil {
		return err
	}

	accountID := doc.AccountID
	if accountOverride != "" {
		accountID = accountOverride
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts, err := loadOptions()
	if err != nil {
		return err
	}

	executor := reconcile.NewExecutor(store, reconcile.NewAnalysisCache(0, 0), opts)
	result, err := executor.Execute(ctx, doc.AnalysisID, accountID, userID, doc.Decisions)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	fmt.Printf("\nExecution of analysis %s (account %s)\n", result.AnalysisID, result.AccountID)
	fmt.Printf("  imported: %d  skipped: %d  merged: %d  replaced: %d  errors: %d\n",
		result.ImportedCount, result.SkippedCount, result.MergedCount, result.ReplacedCount, result.ErrorCount)

	for _, outcome := range result.Outcomes {
		if outcome.Success {
			continue
		}
		fmt.Printf("  failed item %s (%s): %s\n", outcome.ItemID, outcome.Decision, outcome.Error)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}

	if !result.IsSuccess {
		return fmt.Errorf("%d item(s) failed; fix and re-run with only the failed decisions", result.ErrorCount)
	}
	return nil
}
