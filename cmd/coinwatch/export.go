package main

import (
	"fmt"

	"github.com/rovshanmuradov/coinwatch/internal/export"
	"github.com/rovshanmuradov/coinwatch/internal/logger"
	"github.com/rovshanmuradov/coinwatch/internal/sorting"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch quotes once and write the tracked tokens to a CSV or JSON file",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().String("format", string(export.FormatCSV), "file format: csv or json")
	cmd.Flags().String("view", "all", "which list to export: watchlist, portfolio or all")
	cmd.Flags().String("out", "./exports", "output directory")
	return cmd
}

func parseView(name string) (*sorting.View, error) {
	var v sorting.View
	switch name {
	case "all":
		return nil, nil
	case "watchlist":
		v = sorting.WatchlistView
	case "portfolio":
		v = sorting.PortfolioView
	default:
		return nil, fmt.Errorf("unknown view %q", name)
	}
	return &v, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	viewName, _ := cmd.Flags().GetString("view")
	out, _ := cmd.Flags().GetString("out")

	view, err := parseView(viewName)
	if err != nil {
		return err
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

	path, err := export.NewExporter(log).Export(st.GetAll(), export.Options{
		Format:    export.Format(format),
		View:      view,
		OutputDir: out,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
