// Package soundcloud provides a client for the SoundCloud REST API.
//
// Every call is asynchronous: it returns a CancelableOperation right away
// and later invokes its completion on the client's Dispatcher.
//
// Example usage:
//
//	import "github.com/jfmyers9/scloud/pkg/soundcloud"
//
//	client, err := soundcloud.NewClient(soundcloud.Config{
//	    ClientID: "your-client-id",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Tracks().Track(42, func(resp soundcloud.SimpleAPIResponse[soundcloud.Track]) {
//	    track, ok := resp.Response.Value()
//	    ...
//	})
package soundcloud

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Config holds client configuration.
type Config struct {
	ClientID           string       // Required for every call: SoundCloud application client ID
	ClientSecret       string       // Optional: required for Login and Refresh
	RedirectURI        string       // Optional: required for AuthorizeURL and Login
	Session            *Session     // Optional: previously persisted session
	SessionStore       SessionStore // Optional: notified when the session changes
	RefreshOnForbidden bool         // Optional: refresh the session and retry once on 401
	HTTPClient         *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	Callbacks          Dispatcher   // Optional: completion context (defaults to a SerialQueue owned by the client)
	BaseURL            string       // Optional: API base URL (defaults to DefaultBaseURL, used for testing)
	ConnectURL         string       // Optional: OAuth authorize URL (defaults to DefaultConnectURL)
	Logger             Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// SessionStore persists the session across runs.
type SessionStore interface {
	// Save is called after a login or refresh.
	Save(s *Session) error
	// Clear is called on logout.
	Clear() error
}

const (
	// DefaultBaseURL is the SoundCloud API endpoint.
	DefaultBaseURL = "https://api.soundcloud.com/"
	// DefaultConnectURL is the page where users authorize an application.
	DefaultConnectURL = "https://soundcloud.com/connect"
)

// Client is the main entry point for SoundCloud API operations.
type Client struct {
	mu           sync.RWMutex
	clientID     string
	clientSecret string
	redirectURI  string
	session      *Session

	store              SessionStore
	refreshOnForbidden bool
	refreshGroup       singleflight.Group

	baseURL    *url.URL
	connectURL string
	httpClient *http.Client
	exec       *Executor
	queue      *SerialQueue
	logger     Logger

	auth      *AuthService
	tracks    *TrackService
	users     *UserService
	playlists *PlaylistService
	me        *MeService
}

// NewClient creates a new SoundCloud API client.
//
// A missing ClientID is not an error here: calls made without one fail
// with ErrCredentialsNotSet, so credentials can be supplied later with
// SetCredentials. Returns an error if BaseURL is not an absolute URL.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return nil, fmt.Errorf("soundcloud: invalid BaseURL %q", cfg.BaseURL)
	}

	connectURL := cfg.ConnectURL
	if connectURL == "" {
		connectURL = DefaultConnectURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		clientID:           cfg.ClientID,
		clientSecret:       cfg.ClientSecret,
		redirectURI:        cfg.RedirectURI,
		session:            cfg.Session,
		store:              cfg.SessionStore,
		refreshOnForbidden: cfg.RefreshOnForbidden,
		baseURL:            baseURL,
		connectURL:         connectURL,
		httpClient:         httpClient,
		logger:             cfg.Logger,
	}

	callbacks := cfg.Callbacks
	if callbacks == nil {
		c.queue = NewSerialQueue()
		callbacks = c.queue
	}
	c.exec = NewExecutor(httpClient, callbacks, cfg.Logger)

	c.auth = &AuthService{client: c}
	c.tracks = &TrackService{client: c}
	c.users = &UserService{client: c}
	c.playlists = &PlaylistService{client: c}
	c.me = &MeService{client: c}

	return c, nil
}

// Close stops the callback queue created by NewClient, after running
// the completions already queued. It does nothing when Config.Callbacks
// was provided.
func (c *Client) Close() {
	if c.queue != nil {
		c.queue.Close()
	}
}

// Auth returns the OAuth service.
func (c *Client) Auth() *AuthService {
	return c.auth
}

// Tracks returns the track service.
func (c *Client) Tracks() *TrackService {
	return c.tracks
}

// Users returns the user service.
func (c *Client) Users() *UserService {
	return c.users
}

// Playlists returns the playlist service.
func (c *Client) Playlists() *PlaylistService {
	return c.playlists
}

// Me returns the service for the logged in user.
func (c *Client) Me() *MeService {
	return c.me
}

// SetCredentials replaces the application credentials used by
// subsequent calls.
func (c *Client) SetCredentials(clientID, clientSecret, redirectURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientID = clientID
	c.clientSecret = clientSecret
	c.redirectURI = redirectURI
}

// ClientID returns the configured client ID.
func (c *Client) ClientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientID
}

// Session returns the current session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// setSession replaces the session and notifies the store.
func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	var err error
	if s == nil {
		err = c.store.Clear()
	} else {
		err = c.store.Save(s)
	}
	if err != nil {
		c.logDebugf("soundcloud: failed to persist session: %v", err)
	}
}

// dispatch runs fn on the callback context.
func (c *Client) dispatch(fn func()) {
	c.exec.Dispatch(fn)
}

// endpoint resolves path against the base URL.
func (c *Client) endpoint(path string) *url.URL {
	return c.baseURL.ResolveReference(&url.URL{Path: path})
}

// decoder returns a model decoder bound to the current client ID.
func (c *Client) decoder() decoder {
	return decoder{clientID: c.ClientID()}
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
