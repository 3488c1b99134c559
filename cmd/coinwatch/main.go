package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/coinwatch/internal/app"
	"github.com/rovshanmuradov/coinwatch/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "coinwatch",
		Short:        "Terminal dashboard for a crypto watchlist and portfolio",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runDashboard,
	}

	root.PersistentFlags().String("config", config.DefaultPath, "config file path")
	root.PersistentFlags().Int("refresh-interval", config.DefaultRefreshInterval, "seconds between market refreshes")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newExecCmd(), newListCmd(), newExportCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, path)
	if err != nil {
		return err
	}
	defer func() { _ = a.Logger().Sync() }()

	return a.Run(ctx)
}
