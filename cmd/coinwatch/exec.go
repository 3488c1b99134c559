package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rovshanmuradov/coinwatch/internal/command"
	"github.com/rovshanmuradov/coinwatch/internal/config"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/engine"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec -- <command>",
		Short: "Apply one dashboard command to the config file and exit",
		Long: `Apply one dashboard command without opening the dashboard, e.g.

  coinwatch exec -- add bitcoin -p 0.5 42000
  coinwatch exec "rm solana -w"

Use -- or quotes so command flags are not read as coinwatch flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExec,
	}
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.CreatePrettyLogger(cfg.DebugLogging)
	defer func() { _ = log.Sync() }()

	out, err := execOffline(cmd.Context(), cfg, path, strings.Join(args, " "), log)
	var pe *domain.PersistenceError
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), out.Describe())
		return nil
	case errors.As(err, &pe):
		fmt.Fprintln(cmd.OutOrStdout(), out.Describe())
		return fmt.Errorf("applied but not saved: %w", err)
	default:
		return err
	}
}

// execOffline applies text to the tokens in cfg and saves the result to
// path. No market data is fetched.
func execOffline(ctx context.Context, cfg *config.Config, path, text string, log *zap.Logger) (outcome command.Outcome, err error) {
	tokens, err := cfg.TrackedTokens()
	if err != nil {
		return outcome, err
	}
	st := store.New(log)
	if err := st.Load(tokens); err != nil {
		return outcome, err
	}

	eng := engine.New(st, config.NewFilePersister(path, cfg), log,
		engine.WithNotify(func(ev domain.Event) {
			if data, ok := ev.Data.(domain.PersistedData); ok {
				log.Info("Config saved", zap.String("path", data.Path))
			}
		}))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })

	outcome, err = eng.Exec(ctx, text)
	cancel()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	return outcome, err
}
