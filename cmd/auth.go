package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jfmyers9/scloud/internal/config"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in to SoundCloud",
	Long: `Log in to SoundCloud to enable favorites, follows, comments and playlists.

This command will guide you through the OAuth flow:
1. A browser URL is printed for you to authorize the application
2. When the redirect URI points at localhost, scloud catches the redirect
   itself; otherwise paste the URL the browser ended up on
3. The session is saved to your config file

Register an application at https://soundcloud.com/you/apps to get a
client id and secret, and set its redirect URI to the one in your config
(default: http://localhost:8976/callback).`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.cfg.ValidateLogin(); err != nil {
		return fmt.Errorf("%w. Edit %s/config.yaml or set SCLOUD_SOUNDCLOUD_* variables", err, s.cfg.Dir())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	state := uuid.NewString()
	authURL, err := s.client.Auth().AuthorizeURL(state)
	if err != nil {
		return explain(err)
	}

	redirect, err := url.Parse(s.cfg.SoundCloud.RedirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect uri: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "SoundCloud Authentication")
	fmt.Fprintln(out, "=========================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Please visit this URL to authorize scloud:")
	fmt.Fprintf(out, "\n  %s\n\n", authURL)

	var code string
	if isLoopback(redirect) {
		code, err = awaitRedirect(ctx, s.client, redirect, state)
	} else {
		code, err = promptRedirect(cmd, s.client, state)
	}
	if err != nil {
		return explain(err)
	}

	fmt.Fprintln(out, "Exchanging authorization code...")
	if _, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[*soundcloud.Session])) soundcloud.CancelableOperation {
		return s.client.Auth().Login(code, done)
	}); err != nil {
		return explain(err)
	}

	me, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
		return s.client.Me().Profile(done)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Logged in but failed to load profile")
		me.Username = "unknown user"
	}

	fmt.Fprintf(out, "\n%s Logged in as %s\n", successMark, me.Username)
	fmt.Fprintf(out, "%s Session saved to %s/config.yaml\n", successMark, config.GetConfigDir())
	return nil
}

func isLoopback(u *url.URL) bool {
	if u.Scheme != "http" || u.Port() == "" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// awaitRedirect serves the redirect URI until the browser comes back
func awaitRedirect(ctx context.Context, client *soundcloud.Client, redirect *url.URL, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	path := redirect.Path
	if path == "" {
		path = "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		code, err := client.Auth().HandleRedirect(r.URL, state)
		if err != nil {
			http.Error(w, "Authorization failed: "+err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- result{code, err}:
		default:
		}
	})

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Callback server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Debug().Str("addr", redirect.Host).Msg("Waiting for OAuth redirect")

	select {
	case r := <-results:
		return r.code, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
}

// promptRedirect asks for the URL the browser was redirected to
func promptRedirect(cmd *cobra.Command, client *soundcloud.Client, state string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "After authorizing, paste the URL you were redirected to: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read redirect URL: %w", err)
	}

	u, err := url.Parse(strings.TrimSpace(line))
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	return client.Auth().HandleRedirect(u, state)
}
