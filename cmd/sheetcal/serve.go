package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sheetcal/internal/blackout"
	"sheetcal/internal/config"
	"sheetcal/internal/ics"
	appLog "sheetcal/internal/log"
	"sheetcal/internal/web"
)

type serveOptions struct {
	listen string
}

func newServeCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar API and refresh ICS blackouts on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "HTTP listen address (overrides config if set)")

	return cmd
}

func runServe(parent context.Context, rootFlags *rootFlags, opts *serveOptions) error {
	conf, err := config.Load(rootFlags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", rootFlags.configPath, err)
	}
	if opts.listen != "" {
		conf.Listen = opts.listen
	}

	level := conf.Log.Level
	if rootFlags.logLevel != "" {
		level = rootFlags.logLevel
	}
	appLog.Configure(appLog.Options{
		Level:      appLog.ParseLevel(level),
		JSON:       conf.Log.JSON,
		File:       conf.Log.File,
		MaxSizeMB:  conf.Log.MaxSizeMB,
		MaxBackups: conf.Log.MaxBackups,
	})

	appLog.Info("sheetcal starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"style", conf.Calendar.Style,
		"boundary_start", conf.Calendar.Boundary.Start.String(),
		"boundary_end", conf.Calendar.Boundary.End.String(),
		"disabled_dates", len(conf.Calendar.DisabledDates),
		"ics_count", len(conf.ICS),
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	store := blackout.NewStore(conf.Calendar.DisabledDates...)
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, src := range conf.ICS {
		sources = append(sources, ics.Source{ID: src.ID, URL: src.URL})
	}
	refresher := blackout.NewRefresher(store, ics.NewFetcher(conf.CacheDir), sources, conf.Calendar.Boundary, conf.Location())
	if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
		return err
	}

	if err := web.StartServer(ctx, conf, store); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	appLog.Info("sheetcal exiting")
	return nil
}
