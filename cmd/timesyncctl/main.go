package main

import (
	"context"
	"fmt"
	"os"

	"timesync-backend/internal/app"
	taskUsecase "timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/config"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "timesyncctl",
		Short:   "Maintenance commands for the TimeSync backend",
		Version: Version,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(remindersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, config.Load())
}

func migrateCmd() *cobra.Command {
	var (
		userID string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move a user's legacy top-level tasks into their task list",
		Long: `Move records from the legacy top-level tasks collection into
users/{id}/tasks. Each record keeps its ID and the legacy copy is
deleted in the same transaction, so a rerun never duplicates.

Examples:
  timesyncctl migrate --user abc123 --dry-run
  timesyncctl migrate --user abc123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			uc := taskUsecase.NewTaskUsecase(a.Store, a.Profiles, a.Publisher, nil, nil, a.Config)
			result, err := uc.MigrateLegacy(ctx, userID, dryRun)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", userID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Found %d legacy tasks for %s\n", result.Found, userID)
			if result.DryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run - no changes made")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d tasks\n", result.Moved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to migrate")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count legacy tasks without moving them")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder queue operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dispatch",
		Short: "Send every due reminder once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.FCM == nil {
				return fmt.Errorf("push delivery is not configured")
			}
			processed, err := a.NewReminderScheduler().RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d reminders\n", processed)
			return nil
		},
	})

	return cmd
}
