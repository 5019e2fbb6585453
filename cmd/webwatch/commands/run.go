package commands

import (
	"context"
	"sync"

	"github.com/aleister1102/webwatch/internal/config"
	"github.com/aleister1102/webwatch/internal/datastore"
	"github.com/aleister1102/webwatch/internal/differ"
	"github.com/aleister1102/webwatch/internal/fetcher"
	"github.com/aleister1102/webwatch/internal/messaging"
	"github.com/aleister1102/webwatch/internal/metrics"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/monitor"
	"github.com/aleister1102/webwatch/internal/resources"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the device agent until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context())
	},
}

func runAgent(ctx context.Context) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	zLogger := *log.GetZerolog()

	siteStore := datastore.NewSiteStore(cfg.StorageConfig.SitesFile, zLogger)
	records, err := siteStore.Load()
	if err != nil {
		return err
	}
	sites := models.NewSiteList(records)
	zLogger.Info().Str("sites_file", siteStore.Path()).Int("sites", sites.Len()).Msg("Loaded sites")
	if added := monitor.MergeInitialSites(sites, cfg.MonitorConfig.InitialSites); added > 0 {
		zLogger.Info().Int("added", added).Msg("Seeded sites from configuration")
		if err := siteStore.Save(sites.Records()); err != nil {
			return err
		}
	}

	var history monitor.History
	if cfg.StorageConfig.HistoryDBPath != "" {
		historyStore, err := datastore.NewHistoryStore(cfg.StorageConfig.HistoryDBPath, cfg.StorageConfig.HistoryMaxContentBytes, zLogger)
		if err != nil {
			return err
		}
		defer historyStore.Close()
		history = historyStore
	}

	m := metrics.New()
	checker := monitor.NewChecker(
		fetcher.NewFetcher(fetcherConfig(cfg), zLogger),
		history,
		differ.NewContentDiffer(differ.DefaultConfig(), zLogger),
		m,
		zLogger,
	)

	service, err := monitor.NewServiceBuilder(zLogger).
		WithConfig(serviceConfig(cfg)).
		WithSites(sites, siteStore).
		WithChecker(checker).
		WithTransport(messaging.NewTransport(clientConfig(cfg), zLogger), topicsFor(cfg)).
		WithHistory(history).
		WithMetrics(m).
		Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	background := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if cfg.MetricsConfig.Enabled {
		background(func() {
			if err := m.Serve(ctx, cfg.MetricsConfig.ListenAddress, zLogger); err != nil {
				zLogger.Error().Err(err).Msg("Metrics exporter stopped")
			}
		})
	}
	if cfg.MonitorConfig.ResourceReportMinutes > 0 {
		reporter := resources.NewReporter(reporterConfig(cfg), zLogger).WithSink(m.ObserveUsage)
		background(func() { reporter.Run(ctx) })
	}
	if path := config.GetConfigPath(configPath); path != "" {
		watcher := config.NewWatcher(path, 0, func(updated *config.GlobalConfig) {
			if err := log.SetLevel(updated.LogConfig.LogLevel); err != nil {
				zLogger.Warn().Err(err).Msg("Ignoring reloaded log level")
			}
		}, zLogger)
		background(func() {
			if err := watcher.Run(ctx); err != nil {
				zLogger.Warn().Err(err).Msg("Config hot-reload disabled")
			}
		})
	}

	err = service.Run(ctx)
	cancel()
	wg.Wait()
	return err
}
