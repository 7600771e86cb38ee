package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jfmyers9/scloud/internal/config"
	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/internal/transport"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

// session bundles what every API command needs
type session struct {
	cfg    *config.Config
	client *soundcloud.Client
}

// debugLogger adapts zerolog to soundcloud.Logger
type debugLogger struct {
	logger zerolog.Logger
}

func (l debugLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// newSession loads the configuration and builds a client around it.
// metrics may be nil.
func newSession(metrics *transport.Metrics) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	httpClient := transport.NewClient(transport.Options{
		Timeout: requestTimeout,
		Metrics: metrics,
		Logger:  logger,
	})

	client, err := soundcloud.NewClient(soundcloud.Config{
		ClientID:           cfg.SoundCloud.ClientID,
		ClientSecret:       cfg.SoundCloud.ClientSecret,
		RedirectURI:        cfg.SoundCloud.RedirectURI,
		Session:            cfg.Session(),
		SessionStore:       config.NewSessionStore(cfg),
		RefreshOnForbidden: cfg.RefreshOnForbidden,
		HTTPClient:         httpClient,
		Logger:             debugLogger{logger: logger.With().Str("component", "soundcloud").Logger()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &session{cfg: cfg, client: client}, nil
}

func (s *session) Close() {
	s.client.Close()
}

// commandContext bounds a single command invocation
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 2*requestTimeout)
}

// fetch waits for a single response and unwraps it
func fetch[T any](ctx context.Context, start func(done func(soundcloud.SimpleAPIResponse[T])) soundcloud.CancelableOperation) (T, error) {
	resp, err := soundcloud.Await(ctx, start)
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := resp.Response.Value()
	if !ok {
		e, _ := resp.Response.Err()
		return v, e
	}
	return v, nil
}

// collect gathers up to pages pages of a listing, following next_href.
func collect[T any](ctx context.Context, pages int, start func(done func(soundcloud.PaginatedAPIResponse[T])) soundcloud.CancelableOperation) ([]T, error) {
	resp, err := soundcloud.Await(ctx, start)
	if err != nil {
		return nil, err
	}

	var items []T
	for page := 1; ; page++ {
		values, ok := resp.Response.Value()
		if !ok {
			e, _ := resp.Response.Err()
			return items, e
		}
		items = append(items, values...)

		if page >= pages || !resp.HasNextPage() {
			return items, nil
		}

		logger.Debug().Int("page", page+1).Msg("Fetching next page")
		resp, err = soundcloud.Await(ctx, resp.FetchNextPage)
		if err != nil {
			return items, err
		}
	}
}

// pagesFlag returns the --pages flag, or the configured default
func pagesFlag(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("pages") {
		if n, _ := cmd.Flags().GetInt("pages"); n > 0 {
			return n
		}
	}
	return cfg.Pages
}

func addPagesFlag(cmd *cobra.Command) {
	cmd.Flags().Int("pages", 0, "Number of pages to fetch (default from config)")
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// explain turns SDK errors into actionable messages
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, soundcloud.ErrCredentialsNotSet):
		return fmt.Errorf("%w. Set soundcloud.client_id in %s/config.yaml or SCLOUD_SOUNDCLOUD_CLIENT_ID", err, config.GetConfigDir())
	case errors.Is(err, soundcloud.ErrNeedsLogin):
		return fmt.Errorf("%w. Run 'scloud auth' first", err)
	}
	return err
}

// dataDir returns the directory holding the outbox database
func dataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".local", "share", "scloud")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

func openOutbox(dirOverride string) (*outbox.Queue, error) {
	dir, err := dataDir(dirOverride)
	if err != nil {
		return nil, err
	}
	queue, err := outbox.NewQueue(filepath.Join(dir, "outbox.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}
	return queue, nil
}

// enqueueOffline stores a when err is a network failure. It returns true
// when the action was queued.
func enqueueOffline(ctx context.Context, cmd *cobra.Command, err error, a outbox.Action) (bool, error) {
	if !errors.Is(err, soundcloud.ErrNetwork) {
		return false, nil
	}
	if queue, _ := cmd.Flags().GetBool("queue"); !queue {
		return false, nil
	}

	dir, _ := cmd.Flags().GetString("data-dir")
	q, oerr := openOutbox(dir)
	if oerr != nil {
		return false, oerr
	}
	defer q.Close()

	id, aerr := q.Add(ctx, a)
	if aerr != nil {
		return false, aerr
	}

	logger.Info().Int64("id", id).Str("kind", string(a.Kind)).Msg("Queued action for sync")
	fmt.Fprintf(cmd.OutOrStdout(), "%s Offline, queued %s of %d (run 'scloud sync')\n", warnMark, a.Kind, a.TargetID)
	return true, nil
}

func addQueueFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("queue", true, "Queue the action for 'scloud sync' when offline")
	cmd.Flags().String("data-dir", "", "Data directory for the outbox (default: ~/.local/share/scloud)")
}
