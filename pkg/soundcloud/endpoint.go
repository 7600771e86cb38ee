package soundcloud

import (
	"net/url"
	"sync"
)

// call describes one API request.
type call struct {
	method  Method
	path    string
	query   *Query     // always encoded into the URL
	params  Parameters // query string for GET, body otherwise
	headers map[string]string
}

// startable is an unstarted request.
type startable interface {
	CancelableOperation
	Start()
}

func (c *Client) url(path string, query *Query) *url.URL {
	u := c.endpoint(path)
	if query != nil && query.Len() > 0 {
		u.RawQuery = query.QueryString()
	}
	return u
}

// appQuery returns the parameters every call carries, or
// KindCredentialsNotSet when no client ID is configured.
func (c *Client) appQuery() (*Query, *Error) {
	id := c.ClientID()
	if id == "" {
		return nil, &Error{Kind: KindCredentialsNotSet}
	}
	return NewQuery("client_id", id), nil
}

// pageQuery is appQuery for listings.
func (c *Client) pageQuery() (*Query, *Error) {
	q, err := c.appQuery()
	if err != nil {
		return nil, err
	}
	return q.Set("linked_partitioning", "true"), nil
}

func prepare[T any](c *Client, cl call, parse func(JSON) Result[T, *Error], completion func(Result[T, *Error])) *Request[T, *Error] {
	return NewRequest(c.exec, APIErrors{}, c.url(cl.path, cl.query), cl.method, cl.params, cl.headers, parse, completion)
}

func simpleRequest[T any](c *Client, cl call, parse func(JSON) Result[T, *Error], completion func(SimpleAPIResponse[T])) *Request[T, *Error] {
	return prepare(c, cl, parse, func(r Result[T, *Error]) {
		completion(NewSimpleAPIResponse(r))
	})
}

func pageRequest[T any](c *Client, cl call, parse func(JSON) Result[[]T, *Error], completion func(PaginatedAPIResponse[T])) *Request[PaginatedAPIResponse[T], *Error] {
	exec := c.exec
	return prepare(c, cl,
		func(raw JSON) Result[PaginatedAPIResponse[T], *Error] {
			return Success[PaginatedAPIResponse[T], *Error](NewPaginatedAPIResponse(exec, raw, parse))
		},
		func(r Result[PaginatedAPIResponse[T], *Error]) {
			completion(r.Recover(PaginatedAPIResponseWithError[T]))
		},
	)
}

// fetchSimple starts a call returning a single value.
func fetchSimple[T any](c *Client, cl call, parse func(JSON) Result[T, *Error], completion func(SimpleAPIResponse[T])) CancelableOperation {
	req := simpleRequest(c, cl, parse, completion)
	req.Start()
	return req
}

// fetchPage starts a listing call.
func fetchPage[T any](c *Client, cl call, parse func(JSON) Result[[]T, *Error], completion func(PaginatedAPIResponse[T])) CancelableOperation {
	req := pageRequest(c, cl, parse, completion)
	req.Start()
	return req
}

// failSimple delivers err without performing a request.
func failSimple[T any](c *Client, err *Error, completion func(SimpleAPIResponse[T])) CancelableOperation {
	c.dispatch(func() {
		completion(SimpleAPIResponseWithError[T](err))
	})
	return completedOperation{}
}

// failPage delivers err without performing a request.
func failPage[T any](c *Client, err *Error, completion func(PaginatedAPIResponse[T])) CancelableOperation {
	c.dispatch(func() {
		completion(PaginatedAPIResponseWithError[T](err))
	})
	return completedOperation{}
}

// authorized runs a call that needs an access token.
//
// issue builds the request for a given token and the completion it must
// report to. When the client was configured with RefreshOnForbidden and
// the call fails with KindForbidden, the session is refreshed and issue
// is called once more with the new token. A failed refresh is reported
// as KindNeedsLogin.
func authorized[R any](c *Client, issue func(token string, done func(R)) startable, forbidden func(R) bool, needsLogin func(*Error) R, completion func(R)) CancelableOperation {
	s := c.Session()
	if s == nil || s.AccessToken == "" {
		c.dispatch(func() {
			completion(needsLogin(&Error{Kind: KindNeedsLogin}))
		})
		return completedOperation{}
	}

	op := &chainedOperation{}
	first := issue(s.AccessToken, func(r R) {
		if !forbidden(r) || !c.refreshOnForbidden || s.RefreshToken == "" {
			completion(r)
			return
		}

		c.logDebugf("soundcloud: access token rejected, refreshing session")
		op.track(c.refreshSession(func(fresh *Session, err *Error) {
			if op.isCancelled() {
				return
			}
			if err != nil {
				completion(needsLogin(&Error{Kind: KindNeedsLogin, Err: err}))
				return
			}
			op.run(issue(fresh.AccessToken, completion))
		}))
	})
	op.run(first)
	return op
}

// sessionSimple is authorized for calls returning a single value.
func sessionSimple[T any](c *Client, build func(token string) call, parse func(JSON) Result[T, *Error], completion func(SimpleAPIResponse[T])) CancelableOperation {
	return authorized(c,
		func(token string, done func(SimpleAPIResponse[T])) startable {
			return simpleRequest(c, build(token), parse, done)
		},
		func(r SimpleAPIResponse[T]) bool {
			e, failed := r.Response.Err()
			return failed && e.Kind == KindForbidden
		},
		SimpleAPIResponseWithError[T],
		completion,
	)
}

// sessionPage is authorized for listings.
func sessionPage[T any](c *Client, build func(token string) call, parse func(JSON) Result[[]T, *Error], completion func(PaginatedAPIResponse[T])) CancelableOperation {
	return authorized(c,
		func(token string, done func(PaginatedAPIResponse[T])) startable {
			return pageRequest(c, build(token), parse, done)
		},
		func(r PaginatedAPIResponse[T]) bool {
			e, failed := r.Response.Err()
			return failed && e.Kind == KindForbidden
		},
		PaginatedAPIResponseWithError[T],
		completion,
	)
}

// chainedOperation cancels whichever request of a retry chain is current.
type chainedOperation struct {
	mu        sync.Mutex
	current   CancelableOperation
	cancelled bool
}

// run makes req current and starts it, unless the chain was cancelled.
func (o *chainedOperation) run(req startable) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return
	}
	o.current = req
	o.mu.Unlock()

	req.Start()
}

// track makes a running operation current, cancelling it at once if the
// chain was already cancelled.
func (o *chainedOperation) track(current CancelableOperation) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		current.Cancel()
		return
	}
	o.current = current
	o.mu.Unlock()
}

func (o *chainedOperation) isCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Cancel cancels the current request and prevents further retries.
func (o *chainedOperation) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	current := o.current
	o.mu.Unlock()

	if current != nil {
		current.Cancel()
	}
}
