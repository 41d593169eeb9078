package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/watersafe-backend/internal/app"
	"github.com/ignatzorin/watersafe-backend/internal/config"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/seed"
)

var (
	cfg *config.Config

	seedFile         string
	operatorEmail    string
	operatorName     string
	operatorPassword string

	rootCmd = &cobra.Command{
		Use:           "watersafectl",
		Short:         "Administrative tasks for the WaterSafe Hub backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Init(cfg.LogLevel)
			logger.SetTextFormatter()
			return nil
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations (postgres driver only)",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and reports through the regular intake path",
		RunE:  runSeed,
	}

	operatorCmd = &cobra.Command{
		Use:   "operator",
		Short: "Manage operator accounts",
	}

	operatorCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an operator or promote an existing user",
		RunE:  runOperatorCreate,
	}
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixtures file (defaults to the built-in demo data)")

	operatorCreateCmd.Flags().StringVar(&operatorEmail, "email", "", "operator email")
	operatorCreateCmd.Flags().StringVar(&operatorName, "name", "", "display name")
	operatorCreateCmd.Flags().StringVar(&operatorPassword, "password", "", "password (min 12 chars, upper, lower and digit)")
	_ = operatorCreateCmd.MarkFlagRequired("email")
	_ = operatorCreateCmd.MarkFlagRequired("password")

	operatorCmd.AddCommand(operatorCreateCmd)
	rootCmd.AddCommand(migrateCmd, seedCmd, operatorCmd)
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func openServices(ctx context.Context) (*app.Services, func(), error) {
	clock := clockwork.NewRealClock()
	store, err := app.OpenStorage(ctx, cfg, clock, true)
	if err != nil {
		return nil, nil, err
	}
	publisher := app.NewPublisher(cfg)
	services := app.NewServices(cfg, store, clock, nil, publisher)

	cleanup := func() {
		_ = publisher.Close()
		if err := store.Close(); err != nil {
			logger.Log.WithError(err).Warn("watersafectl: ошибка закрытия хранилища")
		}
	}
	return services, cleanup, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := app.Migrate(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	var (
		fixtures *seed.Fixtures
		err      error
	)
	if seedFile != "" {
		fixtures, err = seed.Load(seedFile)
	} else {
		fixtures, err = seed.Default()
	}
	if err != nil {
		return err
	}

	services, cleanup, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := services.Seed.Seed(ctx, fixtures)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "users upserted: %d\n", res.Users)
	if res.ReportsSkipped {
		fmt.Fprintln(out, "reports skipped: storage is not empty")
		return nil
	}
	fmt.Fprintf(out, "reports created: %d\n", res.Reports)
	return nil
}

func runOperatorCreate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	services, cleanup, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var name *string
	if operatorName != "" {
		name = &operatorName
	}

	user, err := services.Auth.CreateOperator(ctx, operatorEmail, name, operatorPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "operator %s ready (id %s)\n", user.Email, user.ID)
	return nil
}
