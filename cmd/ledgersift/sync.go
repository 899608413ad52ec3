package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgersift/ledgersift/internal/banksync"
	"github.com/ledgersift/ledgersift/internal/reconcile"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch bank-sync transactions and analyze them for conflicts",
		Long: `Pull transactions from the configured Plaid connection for a date range
and run conflict analysis against the existing ledger, exactly as a file
import would.`,
		RunE: runSync,
	}

	cmd.Flags().String("account", "", "ledger account id to reconcile against (required)")
	cmd.Flags().String("user", "", "user id scoping the existing-transaction fetch")
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (default: 30 days ago)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD (default: today)")
	cmd.Flags().String("decisions-out", "", "write a decisions file skeleton to this path")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	accountID, _ := cmd.Flags().GetString("account")
	userID, _ := cmd.Flags().GetString("user")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	decisionsOut, _ := cmd.Flags().GetString("decisions-out")

	ctx := cmd.Context()

	endDate := time.Now()
	if endStr != "" {
		var err error
		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
	}
	startDate := endDate.AddDate(0, 0, -30)
	if startStr != "" {
		var err error
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return fmt.Errorf("invalid start date %q: %w", startStr, err)
		}
	}

	client, err := banksync.NewClient(banksync.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	})
	if err != nil {
		return err
	}

	candidates, err := client.GetCandidates(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("bank sync failed: %w", err)
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

	analyzer := reconcile.NewAnalyzer(store, reconcile.NewAnalysisCache(0, 0), opts)
	result, err := analyzer.Analyze(ctx, candidates, accountID, userID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printAnalysis(result)

	if decisionsOut != "" {
		if err := writeDecisionsSkeleton(decisionsOut, result); err != nil {
			return err
		}
		fmt.Printf("\nDecisions skeleton written to %s\n", decisionsOut)
	}

	return nil
}
