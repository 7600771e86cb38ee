package soundcloud

import (
	"net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parameters can render themselves both as a URL query string (GET) and
// as a request body (other methods).
type Parameters interface {
	QueryString() string
	FormData() []byte
}

// contentTyper is implemented by parameters that know their body type.
type contentTyper interface {
	ContentType() string
}

// RawQuery is an already encoded query string. As a body it is sent as is.
type RawQuery string

// QueryString returns q unchanged.
func (q RawQuery) QueryString() string { return string(q) }

// FormData returns the bytes of q.
func (q RawQuery) FormData() []byte { return []byte(q) }

// Body is a raw request body. It has no query string form.
type Body []byte

// QueryString returns an empty string.
func (b Body) QueryString() string { return "" }

// FormData returns b unchanged.
func (b Body) FormData() []byte { return b }

// Query is an ordered set of key/value parameters. Keys are written in
// the order they were first set.
type Query struct {
	pairs *orderedmap.OrderedMap[string, string]
}

// NewQuery returns a Query populated from alternating key, value
// arguments. A trailing key without a value is ignored.
func NewQuery(kv ...string) *Query {
	q := &Query{pairs: orderedmap.New[string, string]()}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return q
}

// Set sets key to value, keeping the original position of an existing key.
func (q *Query) Set(key, value string) *Query {
	q.pairs.Set(key, value)
	return q
}

// Get returns the value stored for key.
func (q *Query) Get(key string) (string, bool) {
	return q.pairs.Get(key)
}

// Merge sets every pair of other on q, in other's order.
func (q *Query) Merge(other *Query) *Query {
	if other == nil {
		return q
	}
	for pair := other.pairs.Oldest(); pair != nil; pair = pair.Next() {
		q.pairs.Set(pair.Key, pair.Value)
	}
	return q
}

// Len returns the number of pairs.
func (q *Query) Len() int {
	return q.pairs.Len()
}

// QueryString encodes the pairs as key=value joined by '&'.
func (q *Query) QueryString() string {
	var sb strings.Builder
	for pair := q.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// FormData returns the query string as a form-encoded body.
func (q *Query) FormData() []byte {
	return []byte(q.QueryString())
}

// ContentType returns the form content type.
func (q *Query) ContentType() string {
	return "application/x-www-form-urlencoded"
}
