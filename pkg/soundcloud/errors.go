package soundcloud

import (
	"fmt"
	"net/http"
)

// ErrorKind identifies the category of an *Error.
type ErrorKind int

// Error kinds.
const (
	KindUnknown           ErrorKind = iota // HTTP status not otherwise mapped
	KindCredentialsNotSet                  // client ID missing, no request was made
	KindNeedsLogin                         // no session, or the session could not be refreshed
	KindNotFound                           // HTTP 404
	KindForbidden                          // HTTP 401
	KindParsing                            // body was not JSON, or did not match the expected shape
	KindNetwork                            // transport failure
	KindLogin                              // OAuth authorization or token exchange was rejected
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "unknown",
	KindCredentialsNotSet: "credentials not set",
	KindNeedsLogin:        "needs login",
	KindNotFound:          "not found",
	KindForbidden:         "forbidden",
	KindParsing:           "parsing",
	KindNetwork:           "network",
	KindLogin:             "login",
}

// String returns a human readable name for the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error represents a failed SoundCloud operation.
//
// Every failure the SDK reports is an *Error delivered inside a Result.
// Callers branch on Kind, or use errors.Is against the predefined
// errors below:
//
//	if errors.Is(err, soundcloud.ErrNotFound) {
//	    // the resource does not exist
//	}
type Error struct {
	Kind        ErrorKind
	StatusCode  int    // HTTP status, when the error came from a response
	Err         error  // underlying transport or decoding error
	Code        string // OAuth error code, for KindLogin
	Description string // OAuth error description, for KindLogin
}

// Error returns the error message.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindLogin && e.Description != "":
		return fmt.Sprintf("soundcloud: login failed: %s: %s", e.Code, e.Description)
	case e.Kind == KindLogin:
		return fmt.Sprintf("soundcloud: login failed: %s", e.Code)
	case e.Err != nil:
		return fmt.Sprintf("soundcloud: %s: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("soundcloud: %s (status %d)", e.Kind, e.StatusCode)
	default:
		return "soundcloud: " + e.Kind.String()
	}
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
//
// This allows errors.Is() to match on ErrNotFound, ErrForbidden, etc.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Temporary returns true if retrying the same operation later may succeed.
//
// Only transport failures are considered temporary. Status and parsing
// errors will repeat until the request or the session changes.
func (e *Error) Temporary() bool {
	return e.Kind == KindNetwork
}

// Predefined errors for use with errors.Is.
var (
	ErrCredentialsNotSet = &Error{Kind: KindCredentialsNotSet}
	ErrNeedsLogin        = &Error{Kind: KindNeedsLogin}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrParsing           = &Error{Kind: KindParsing}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrUnknown           = &Error{Kind: KindUnknown}
	ErrLogin             = &Error{Kind: KindLogin}
)

// NetworkError wraps a transport failure.
func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// ParsingError wraps a decoding failure. err may be nil when well-formed
// JSON did not have the expected shape.
func ParsingError(err error) *Error {
	return &Error{Kind: KindParsing, Err: err}
}

// LoginError builds a KindLogin error from an OAuth error response.
func LoginError(code, description string) *Error {
	return &Error{Kind: KindLogin, Code: code, Description: description}
}

// RequestError builds typed errors of type E for the three ways a request
// can fail: the transport, the JSON decoder, or the HTTP status.
type RequestError[E any] interface {
	// FromNetwork wraps a transport failure.
	FromNetwork(err error) E
	// FromJSON wraps a JSON decoding failure.
	FromJSON(err error) E
	// FromStatus returns an error for resp, or false when the status is a
	// success and the body should be decoded.
	FromStatus(resp *http.Response) (E, bool)
}

// APIErrors is the RequestError implementation used by every endpoint.
type APIErrors struct{}

// FromNetwork returns a KindNetwork error.
func (APIErrors) FromNetwork(err error) *Error {
	return NetworkError(err)
}

// FromJSON returns a KindParsing error.
func (APIErrors) FromJSON(err error) *Error {
	return ParsingError(err)
}

// FromStatus maps the response status:
//   - 200, 201: no error
//   - 401: KindForbidden
//   - 404: KindNotFound
//   - anything else: KindUnknown
func (APIErrors) FromStatus(resp *http.Response) (*Error, bool) {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil, false
	case http.StatusUnauthorized:
		return &Error{Kind: KindForbidden, StatusCode: resp.StatusCode}, true
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: resp.StatusCode}, true
	default:
		return &Error{Kind: KindUnknown, StatusCode: resp.StatusCode}, true
	}
}
