package soundcloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Method is an HTTP method supported by the API.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// CancelableOperation is returned by every call that performs network I/O.
type CancelableOperation interface {
	// Cancel aborts the call. Its completion will not be invoked.
	// Cancelling a finished operation does nothing.
	Cancel()
}

// Executor performs HTTP calls for Requests and delivers their results
// through a Dispatcher.
type Executor struct {
	httpClient *http.Client
	callbacks  Dispatcher
	userAgent  string
	logger     Logger
}

// NewExecutor creates an Executor. A nil httpClient uses
// http.DefaultClient; a nil callbacks runs completions on the goroutine
// that finished the call.
func NewExecutor(httpClient *http.Client, callbacks Dispatcher, logger Logger) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if callbacks == nil {
		callbacks = DispatcherFunc(func(fn func()) { fn() })
	}
	return &Executor{
		httpClient: httpClient,
		callbacks:  callbacks,
		userAgent:  "scloud/1.0",
		logger:     logger,
	}
}

// Dispatch runs fn on the executor's callback context.
func (e *Executor) Dispatch(fn func()) {
	e.callbacks.Dispatch(fn)
}

func (e *Executor) logDebugf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debugf(format, args...)
	}
}

// Request is a single HTTP call whose JSON body is turned into a
// Result[T, E] by a parse function.
//
// A Request performs at most one call and invokes its completion at most
// once. It never retries.
type Request[T, E any] struct {
	exec       *Executor
	errs       RequestError[E]
	url        *url.URL
	method     Method
	params     Parameters
	headers    map[string]string
	parse      func(JSON) Result[T, E]
	completion func(Result[T, E])

	mu        sync.Mutex
	started   bool
	cancel    context.CancelFunc
	cancelled bool
	finished  bool
}

// NewRequest builds a Request. Nothing is sent until Start is called.
//
// params may be nil. For GET they are appended to u as a query string,
// for other methods they become the body. headers are set verbatim and
// override the defaults.
func NewRequest[T, E any](
	exec *Executor,
	errs RequestError[E],
	u *url.URL,
	method Method,
	params Parameters,
	headers map[string]string,
	parse func(JSON) Result[T, E],
	completion func(Result[T, E]),
) *Request[T, E] {
	return &Request[T, E]{
		exec:       exec,
		errs:       errs,
		url:        u,
		method:     method,
		params:     params,
		headers:    headers,
		parse:      parse,
		completion: completion,
	}
}

// Start sends the request in the background. Calling Start more than
// once has no effect.
func (r *Request[T, E]) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	go r.run(ctx)
}

// Cancel aborts a started request and suppresses its completion. It is a
// no-op before Start and after the completion was delivered.
func (r *Request[T, E]) Cancel() {
	r.mu.Lock()
	if !r.started || r.finished {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
}

func (r *Request[T, E]) run(ctx context.Context) {
	defer r.cancel()

	req, err := r.build(ctx)
	if err != nil {
		r.deliver(Failure[T](r.errs.FromNetwork(err)))
		return
	}

	r.exec.logDebugf("soundcloud: %s %s", req.Method, req.URL.Path)

	resp, err := r.exec.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			r.exec.logDebugf("soundcloud: %s %s cancelled", req.Method, req.URL.Path)
			return
		}
		r.deliver(Failure[T](r.errs.FromNetwork(err)))
		return
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	r.exec.logDebugf("soundcloud: %s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)

	if e, failed := r.errs.FromStatus(resp); failed {
		r.deliver(Failure[T](e))
		return
	}

	if readErr != nil {
		if ctx.Err() != nil {
			return
		}
		r.deliver(Failure[T](r.errs.FromNetwork(readErr)))
		return
	}

	var doc JSON
	if len(bytes.TrimSpace(body)) > 0 {
		doc, err = DecodeJSON(body)
		if err != nil {
			r.deliver(Failure[T](r.errs.FromJSON(err)))
			return
		}
	}

	r.deliver(r.parse(doc))
}

// build creates the HTTP request. GET parameters go into the query
// string, everything else sends them as the body.
func (r *Request[T, E]) build(ctx context.Context) (*http.Request, error) {
	if r.url == nil {
		return nil, errors.New("request URL is nil")
	}

	u := *r.url
	var body io.Reader
	contentType := ""

	if r.params != nil {
		if r.method == MethodGet {
			if qs := r.params.QueryString(); qs != "" {
				if u.RawQuery != "" {
					u.RawQuery += "&" + qs
				} else {
					u.RawQuery = qs
				}
			}
		} else {
			body = bytes.NewReader(r.params.FormData())
			if ct, ok := r.params.(contentTyper); ok {
				contentType = ct.ContentType()
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(string(r.method)), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.exec.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// deliver hands result to the completion on the callback context unless
// the request was cancelled or already delivered.
func (r *Request[T, E]) deliver(result Result[T, E]) {
	r.exec.Dispatch(func() {
		r.mu.Lock()
		if r.cancelled || r.finished {
			r.mu.Unlock()
			return
		}
		r.finished = true
		r.mu.Unlock()

		r.completion(result)
	})
}

// completedOperation is returned when a call fails before any I/O.
type completedOperation struct{}

func (completedOperation) Cancel() {}
