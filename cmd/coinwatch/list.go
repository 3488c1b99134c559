package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rovshanmuradov/coinwatch/internal/coinmarketcap"
	"github.com/rovshanmuradov/coinwatch/internal/config"
	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/engine"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/rovshanmuradov/coinwatch/internal/store"
	"github.com/rovshanmuradov/coinwatch/internal/ui/format"
	"github.com/rovshanmuradov/coinwatch/internal/ui/screen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const listTimeout = 30 * time.Second

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch quotes once and print the watchlist and portfolio",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().String("view", "all", "which list to print: watchlist, portfolio or all")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("view")
	only, err := parseView(name)
	if err != nil {
		return err
	}
	views := []sorting.View{sorting.WatchlistView, sorting.PortfolioView}
	if only != nil {
		views = []sorting.View{*only}
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.CreatePrettyLogger(cfg.DebugLogging)
	defer func() { _ = log.Sync() }()

	st, err := fetchOnce(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	all := st.GetAll()
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printView(cmd.OutOrStdout(), v, all)
	}
	return nil
}

// fetchOnce loads the tracked tokens from cfg and merges one quote fetch
// into them.
func fetchOnce(parent context.Context, cfg *config.Config, log *zap.Logger) (*store.Store, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	tokens, err := cfg.TrackedTokens()
	if err != nil {
		return nil, err
	}
	st := store.New(log)
	if err := st.Load(tokens); err != nil {
		return nil, err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, listTimeout)
	defer cancel()

	// Market data is never written to the config file, so no persister.
	eng := engine.New(st, nil, log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })

	client := coinmarketcap.NewClient(cfg.APIKey, coinmarketcap.WithLogger(log))
	fetchErr := func() error {
		defer cancel()
		snap, err := client.Quotes(ctx, st.IDs())
		if err != nil {
			return err
		}
		res, err := eng.Reconcile(ctx, snap, time.Now())
		if err == nil && res.Partial() {
			log.Warn("Fetch did not cover every token", zap.Int("missing", len(res.Missing)))
		}
		return err
	}()
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return st, nil
}

// printView writes one view as a table in its default sort order.
func printView(w io.Writer, v sorting.View, tokens []domain.TrackedToken) {
	rows := sorting.DefaultState(v).Apply(tokens)
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%d)", v, len(rows)))
	fmt.Fprintln(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  empty")
		return
	}

	cols := sorting.Columns(v)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if cols[col] != sorting.Symbol {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	for _, tok := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = screen.CellFor(tok, c).Text
		}
		t.Row(cells...)
	}
	fmt.Fprintln(w, t.Render())

	if v == sorting.PortfolioView {
		sum := domain.Summarize(rows)
		fmt.Fprintf(w, "Net worth %s  P/L %s (%s)\n",
			format.USD(sum.NetWorth), format.SignedUSD(sum.PnL), format.Percent(sum.PnLPercent))
	}
}
