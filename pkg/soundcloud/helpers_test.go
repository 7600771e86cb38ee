package soundcloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// newTestClient creates a client pointed at server.
func newTestClient(t *testing.T, server *httptest.Server, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		RedirectURI:  "scloud://oauth",
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// withSession logs the test client in.
func withSession(s *Session) func(*Config) {
	return func(cfg *Config) {
		cfg.Session = s
	}
}

// jsonServer serves body with status for every request.
func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("failed to write response body: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// wait runs a callback style call and fails the test if it does not
// complete in time.
func wait[T any](t *testing.T, start func(func(T)) CancelableOperation) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := Await(ctx, start)
	if err != nil {
		t.Fatalf("call did not complete: %v", err)
	}
	return v
}

// errorKind returns the kind of a failed response, or fails the test.
func errorKind[T any](t *testing.T, r Result[T, *Error]) ErrorKind {
	t.Helper()
	e, failed := r.Err()
	if !failed {
		t.Fatalf("expected failure, got success")
	}
	return e.Kind
}

const userJSON = `{"id": 7, "kind": "user", "username": "artist", "full_name": "The Artist", "city": "Berlin",
	"avatar_url": "https://i1.sndcdn.com/avatars-large.jpg", "followers_count": 12, "followings_count": 3}`

func trackJSON(id int, title string) string {
	return `{"id": ` + strconv.Itoa(id) + `, "kind": "track", "title": "` + title + `", "duration": 185000,
		"created_at": "2015/03/12 10:20:30 +0000", "streamable": true,
		"stream_url": "https://api.soundcloud.com/tracks/` + strconv.Itoa(id) + `/stream",
		"tag_list": "ambient \"field recording\" drone", "bpm": 120.5,
		"user": ` + userJSON + `}`
}
