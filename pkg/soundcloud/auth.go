package soundcloud

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// AuthService provides the OAuth 2 login flow.
//
// The flow is:
//
//  1. Send the user to AuthorizeURL
//  2. Receive the redirect and extract the code with HandleRedirect
//  3. Exchange the code for a session with Login
//  4. Persist the session (Config.SessionStore is notified automatically)
type AuthService struct {
	client *Client
}

// oauthConfig returns the OAuth configuration, or KindCredentialsNotSet
// when the client ID, secret or redirect URI is missing.
func (c *Client) oauthConfig(needSecret bool) (*oauth2.Config, *Error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.clientID == "" || c.redirectURI == "" || (needSecret && c.clientSecret == "") {
		return nil, &Error{Kind: KindCredentialsNotSet}
	}
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.connectURL,
			TokenURL:  c.endpoint("oauth2/token").String(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, nil
}

// oauthContext makes the oauth2 package use the client's HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// tokenError converts a token endpoint failure.
func tokenError(err error) *Error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return NetworkError(err)
	}
	if rerr.ErrorCode != "" {
		return LoginError(rerr.ErrorCode, rerr.ErrorDescription)
	}
	if rerr.Response != nil {
		if e, failed := (APIErrors{}).FromStatus(rerr.Response); failed {
			return e
		}
	}
	return ParsingError(err)
}

// AuthorizeURL returns the page where the user grants access. state is
// echoed back in the redirect and should be checked by HandleRedirect.
func (a *AuthService) AuthorizeURL(state string) (string, error) {
	cfg, err := a.client.oauthConfig(false)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

// HandleRedirect extracts the authorization code from the redirect the
// user was sent to. When state is not empty it must match the state
// parameter of the redirect.
func (a *AuthService) HandleRedirect(redirect *url.URL, state string) (string, error) {
	q := redirect.Query()
	if code := q.Get("error"); code != "" {
		return "", LoginError(code, q.Get("error_description"))
	}
	if state != "" && q.Get("state") != state {
		return "", LoginError("invalid_state", "state parameter does not match")
	}
	code := q.Get("code")
	if code == "" {
		return "", LoginError("invalid_request", "redirect has no code")
	}
	return code, nil
}

// Login exchanges an authorization code for a session. On success the
// session becomes the client's session.
//
// Example:
//
//	client.Auth().Login(code, func(resp soundcloud.SimpleAPIResponse[*soundcloud.Session]) {
//	    if err, failed := resp.Response.Err(); failed {
//	        log.Print(err)
//	    }
//	})
func (a *AuthService) Login(code string, completion func(SimpleAPIResponse[*Session])) CancelableOperation {
	c := a.client
	cfg, err := c.oauthConfig(true)
	if err != nil {
		return failSimple(c, err, completion)
	}

	return c.background(func(ctx context.Context) func() {
		c.logDebugf("soundcloud: exchanging authorization code")
		tok, err := cfg.Exchange(c.oauthContext(ctx), code)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e := tokenError(err)
			return func() { completion(SimpleAPIResponseWithError[*Session](e)) }
		}
		if ctx.Err() != nil {
			return nil
		}
		s := newSession(code, tok, nil)
		c.setSession(s)
		return func() { completion(SimpleAPIResponseWithValue(s)) }
	})
}

// Refresh exchanges the refresh token of the current session for a new
// session. Fails with KindNeedsLogin when there is no refresh token.
// Cancelling the operation aborts the token request and leaves the
// current session in place.
func (a *AuthService) Refresh(completion func(SimpleAPIResponse[*Session])) CancelableOperation {
	c := a.client
	return c.background(func(ctx context.Context) func() {
		s, err := c.doRefresh(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return func() { completion(SimpleAPIResponseWithError[*Session](err)) }
		}
		return func() { completion(SimpleAPIResponseWithValue(s)) }
	})
}

// Logout forgets the session and clears the session store.
func (a *AuthService) Logout() {
	a.client.setSession(nil)
}

// Session returns the current session, or nil.
func (a *AuthService) Session() *Session {
	return a.client.Session()
}

// SetSession installs a session obtained elsewhere. The session store is
// not notified.
func (a *AuthService) SetSession(s *Session) {
	a.client.mu.Lock()
	a.client.session = s
	a.client.mu.Unlock()
}

// refreshSession refreshes the session and calls completion on the
// callback context. completion is not called once the returned operation
// is cancelled.
func (c *Client) refreshSession(completion func(*Session, *Error)) CancelableOperation {
	return c.background(func(ctx context.Context) func() {
		s, err := c.doRefresh(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return func() { completion(s, err) }
	})
}

// doRefresh performs the refresh. Concurrent callers share one token
// request, bound to the context of the caller that started it. A caller
// whose shared request was cancelled by another caller starts a new one.
func (c *Client) doRefresh(ctx context.Context) (*Session, *Error) {
	for {
		ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
			return c.fetchRefresh(ctx)
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, NetworkError(ctx.Err())
		case res = <-ch:
		}

		if res.Err == nil {
			return res.Val.(*Session), nil
		}
		if isContextError(res.Err) && ctx.Err() == nil {
			continue
		}
		var e *Error
		if errors.As(res.Err, &e) {
			return nil, e
		}
		return nil, NetworkError(res.Err)
	}
}

// fetchRefresh requests a new token. The session is only replaced when
// ctx is still live after the token arrives.
func (c *Client) fetchRefresh(ctx context.Context) (*Session, error) {
	current := c.Session()
	if current == nil || current.RefreshToken == "" {
		return nil, &Error{Kind: KindNeedsLogin}
	}
	cfg, cerr := c.oauthConfig(true)
	if cerr != nil {
		return nil, cerr
	}

	c.logDebugf("soundcloud: refreshing session")
	src := cfg.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	tok, err := src.Token()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, tokenError(err)
	}

	s := newSession(current.AuthorizationCode, tok, current)
	c.setSession(s)
	return s, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// background runs work on a new goroutine and dispatches the callback
// it returns. A nil callback delivers nothing.
func (c *Client) background(work func(ctx context.Context) func()) CancelableOperation {
	ctx, cancel := context.WithCancel(context.Background())
	op := &backgroundOperation{cancel: cancel}
	go func() {
		defer cancel()
		deliver := work(ctx)
		if deliver == nil {
			return
		}
		c.dispatch(func() {
			if op.finish() {
				deliver()
			}
		})
	}()
	return op
}

type backgroundOperation struct {
	cancel    context.CancelFunc
	mu        sync.Mutex
	cancelled bool
	finished  bool
}

// finish marks the operation delivered. It returns false if it was
// cancelled.
func (o *backgroundOperation) finish() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled || o.finished {
		return false
	}
	o.finished = true
	return true
}

// Cancel aborts the operation.
func (o *backgroundOperation) Cancel() {
	o.mu.Lock()
	if o.finished {
		o.mu.Unlock()
		return
	}
	o.cancelled = true
	o.mu.Unlock()
	o.cancel()
}
