package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
)

// pagedServer serves followers of user 1 three users per page, for pages
// 1 to last.
func pagedServer(t *testing.T, last int, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}

		users := make([]string, 3)
		for i := range users {
			id := (page-1)*3 + i + 1
			users[i] = fmt.Sprintf(`{"id": %d, "username": "user%d"}`, id, id)
		}
		next := "null"
		if page < last {
			next = fmt.Sprintf("%q", fmt.Sprintf("%s/users/1/followers.json?page=%d", server.URL, page+1))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"collection": [%s], "next_href": %s}`, strings.Join(users, ","), next)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string) *soundcloud.Client {
	t.Helper()

	client, err := soundcloud.NewClient(soundcloud.Config{ClientID: "test-client-id", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name      string
		lastPage  int
		pages     int
		wantUsers int
		wantHits  int32
	}{
		{name: "single page requested", lastPage: 3, pages: 1, wantUsers: 3, wantHits: 1},
		{name: "stops at requested pages", lastPage: 3, pages: 2, wantUsers: 6, wantHits: 2},
		{name: "stops at last page", lastPage: 2, pages: 5, wantUsers: 6, wantHits: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := pagedServer(t, tt.lastPage, &hits)
			client := newTestClient(t, server.URL)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			users, err := collect(ctx, tt.pages, func(done func(soundcloud.PaginatedAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
				return client.Users().Followers(1, done)
			})
			if err != nil {
				t.Fatalf("collect() error = %v", err)
			}
			if len(users) != tt.wantUsers {
				t.Errorf("collect() returned %d users, want %d", len(users), tt.wantUsers)
			}
			for i, u := range users {
				if u.ID != i+1 {
					t.Errorf("users[%d].ID = %d, want %d", i, u.ID, i+1)
				}
			}
			if got := hits.Load(); got != tt.wantHits {
				t.Errorf("server hits = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestFetch_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Track])) soundcloud.CancelableOperation {
		return client.Tracks().Track(42, done)
	})
	if !errors.Is(err, soundcloud.ErrNotFound) {
		t.Errorf("fetch() error = %v, want ErrNotFound", err)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "42"})
	if err != nil {
		t.Fatalf("parseIDs() error = %v", err)
	}
	if diff := cmp.Diff([]int{1, 42}, ids); diff != "" {
		t.Errorf("parseIDs() mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"abc", "0", "-3", ""} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) succeeded, want error", bad)
		}
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"needs login", &soundcloud.Error{Kind: soundcloud.KindNeedsLogin}, "scloud auth"},
		{"credentials", &soundcloud.Error{Kind: soundcloud.KindCredentialsNotSet}, "SCLOUD_SOUNDCLOUD_CLIENT_ID"},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := explain(tt.err)
			if !strings.Contains(got.Error(), tt.want) {
				t.Errorf("explain() = %q, want it to mention %q", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("explain() lost the original error")
			}
		})
	}

	if explain(nil) != nil {
		t.Error("explain(nil) != nil")
	}
}

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"http://localhost:8976/callback": true,
		"http://127.0.0.1:8080/":         true,
		"http://localhost/callback":      false,
		"https://localhost:8976/cb":      false,
		"scloud://oauth":                 false,
		"http://example.com:8080/cb":     false,
	}

	for raw, want := range tests {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("url.Parse(%q) error = %v", raw, err)
		}
		if got := isLoopback(u); got != want {
			t.Errorf("isLoopback(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestEnqueueOffline(t *testing.T) {
	newCmd := func(dir string, queue bool) (*cobra.Command, *bytes.Buffer) {
		cmd := &cobra.Command{Use: "test"}
		addQueueFlags(cmd)
		_ = cmd.Flags().Set("data-dir", dir)
		_ = cmd.Flags().Set("queue", fmt.Sprint(queue))
		var out bytes.Buffer
		cmd.SetOut(&out)
		return cmd, &out
	}

	ctx := context.Background()
	action := outbox.Action{Kind: outbox.KindFollow, TargetID: 9}
	offline := soundcloud.NetworkError(errors.New("no route to host"))

	t.Run("network error is queued", func(t *testing.T) {
		dir := t.TempDir()
		cmd, out := newCmd(dir, true)

		queued, err := enqueueOffline(ctx, cmd, offline, action)
		if err != nil || !queued {
			t.Fatalf("enqueueOffline() = %v, %v, want queued", queued, err)
		}
		if !strings.Contains(out.String(), "queued follow of 9") {
			t.Errorf("output = %q", out.String())
		}

		q, err := openOutbox(dir)
		if err != nil {
			t.Fatalf("openOutbox() error = %v", err)
		}
		defer q.Close()
		if n, _ := q.Count(ctx, outbox.StatusPending); n != 1 {
			t.Errorf("pending = %d, want 1", n)
		}
	})

	t.Run("queue disabled", func(t *testing.T) {
		cmd, _ := newCmd(t.TempDir(), false)
		if queued, err := enqueueOffline(ctx, cmd, offline, action); queued || err != nil {
			t.Errorf("enqueueOffline() = %v, %v, want not queued", queued, err)
		}
	})

	t.Run("other errors are not queued", func(t *testing.T) {
		cmd, _ := newCmd(t.TempDir(), true)
		notFound := &soundcloud.Error{Kind: soundcloud.KindNotFound, StatusCode: 404}
		if queued, err := enqueueOffline(ctx, cmd, notFound, action); queued || err != nil {
			t.Errorf("enqueueOffline() = %v, %v, want not queued", queued, err)
		}
	})
}

func TestSyncMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newSyncMetrics(reg)

	m.record(outbox.Stats{Done: 2, Retried: 1})
	m.record(outbox.Stats{Done: 1, Failed: 3})

	for outcome, want := range map[string]float64{"done": 3, "retried": 1, "failed": 3} {
		if got := testutil.ToFloat64(m.actions.WithLabelValues(outcome)); got != want {
			t.Errorf("%s = %v, want %v", outcome, got, want)
		}
	}
}
