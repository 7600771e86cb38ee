package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Finished actions are kept this long for 'scloud outbox'
const outboxRetention = 7 * 24 * time.Hour

var (
	syncOnce        bool
	syncInterval    time.Duration
	syncMetricsAddr string
	syncDataDir     string
	syncBatchSize   int
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay actions queued while offline",
	Long: `Replay the favorites, follows and comments queued while offline.

By default sync runs in the foreground and replays the outbox every
sync_interval (5m unless configured) until interrupted. Use --once to
replay a single batch and exit.

Network failures leave an action pending for the next run; any other
failure, or too many network failures, marks it failed.

With --metrics-addr, Prometheus metrics for API requests and the outbox
are served at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncOnce, "once", false, "Replay one batch and exit")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 0, "Replay interval (default from config)")
	syncCmd.Flags().StringVar(&syncMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	syncCmd.Flags().StringVar(&syncDataDir, "data-dir", "", "Data directory for the outbox (default: ~/.local/share/scloud)")
	syncCmd.Flags().IntVar(&syncBatchSize, "batch", 50, "Actions replayed per run (0=all)")
}

// syncMetrics counts replay outcomes
type syncMetrics struct {
	actions *prometheus.CounterVec
	pending prometheus.Gauge
}

func newSyncMetrics(reg prometheus.Registerer) *syncMetrics {
	m := &syncMetrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scloud",
			Name:      "outbox_actions_total",
			Help:      "Outbox actions replayed, by outcome.",
		}, []string{"outcome"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scloud",
			Name:      "outbox_pending",
			Help:      "Actions waiting in the outbox.",
		}),
	}
	reg.MustRegister(m.actions, m.pending)
	return m
}

func (m *syncMetrics) record(stats outbox.Stats) {
	m.actions.WithLabelValues("done").Add(float64(stats.Done))
	m.actions.WithLabelValues("retried").Add(float64(stats.Retried))
	m.actions.WithLabelValues("failed").Add(float64(stats.Failed))
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := transport.NewMetrics()
	counters := newSyncMetrics(metrics.Registry())

	s, err := newSession(metrics)
	if err != nil {
		return err
	}
	defer s.Close()

	queue, err := openOutbox(syncDataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	processor := outbox.NewProcessor(queue, outbox.ClientPerformer{Client: s.client}, outbox.ProcessorConfig{
		BatchSize: syncBatchSize,
	}, logger)

	interval := syncInterval
	if interval <= 0 {
		interval = s.cfg.SyncInterval
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	replay := func(ctx context.Context) error {
		stats, err := processor.ProcessPending(ctx)
		counters.record(stats)
		if pending, cerr := queue.Count(ctx, outbox.StatusPending); cerr == nil {
			counters.pending.Set(float64(pending))
		}
		if err != nil {
			return err
		}

		if stats != (outbox.Stats{}) {
			logger.Info().
				Int("done", stats.Done).
				Int("retried", stats.Retried).
				Int("failed", stats.Failed).
				Msg("Replayed outbox")
		}
		if deleted, err := queue.Cleanup(ctx, outboxRetention); err != nil {
			logger.Warn().Err(err).Msg("Failed to clean up outbox")
		} else if deleted > 0 {
			logger.Debug().Int64("deleted", deleted).Msg("Cleaned up outbox")
		}
		return nil
	}

	if syncOnce {
		if err := replay(ctx); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		pending, _ := queue.Count(ctx, outbox.StatusPending)
		fmt.Fprintf(cmd.OutOrStdout(), "%s Outbox replayed, %d pending\n", successMark, pending)
		return nil
	}

	logger.Info().Dur("interval", interval).Msg("Starting outbox sync")

	g, ctx := errgroup.WithContext(ctx)

	if syncMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: syncMetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			logger.Info().Str("addr", syncMetricsAddr).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := replay(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("Outbox replay failed")
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Msg("Sync stopped")
	return nil
}
