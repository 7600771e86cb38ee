package soundcloud

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const playlistJSON = `{"id": 11, "kind": "playlist", "title": "Mix", "sharing": "public", "playlist_type": "album",
	"user": ` + userJSON + `, "tracks": []}`

func TestPlaylistService_Playlist(t *testing.T) {
	tests := []struct {
		name        string
		secretToken string
		wantQuery   string
	}{
		{name: "public", wantQuery: "client_id=test-client-id"},
		{name: "private", secretToken: "s-abc", wantQuery: "client_id=test-client-id&secret_token=s-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/playlists/11" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.RawQuery != tt.wantQuery {
					t.Errorf("expected query %q, got %q", tt.wantQuery, r.URL.RawQuery)
				}
				_, _ = w.Write([]byte(playlistJSON))
			}))
			defer server.Close()

			client := newTestClient(t, server)
			resp := wait(t, func(done func(SimpleAPIResponse[Playlist])) CancelableOperation {
				return client.Playlists().Playlist(11, tt.secretToken, done)
			})

			p, ok := resp.Response.Value()
			if !ok {
				t.Fatal("expected success")
			}
			if p.Sharing != SharingPublic || p.PlaylistType != PlaylistTypeAlbum {
				t.Errorf("unexpected playlist %+v", p)
			}
		})
	}
}

func TestPlaylistService_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/playlists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.RawQuery != "client_id=test-client-id&oauth_token=access" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "playlist%5Btitle%5D=Mix&playlist%5Bsharing%5D=private" {
			t.Errorf("unexpected body %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(playlistJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server, withSession(&Session{AccessToken: "access"}))
	resp := wait(t, func(done func(SimpleAPIResponse[Playlist])) CancelableOperation {
		return client.Playlists().Create("Mix", "", done)
	})
	if !resp.Response.IsSuccess() {
		t.Error("expected success")
	}
}

func TestPlaylistService_UpdateTracks(t *testing.T) {
	current := Playlist{ID: 11, Tracks: []Track{{ID: 1}, {ID: 2}, {ID: 3}}}

	tests := []struct {
		name    string
		call    func(c *Client, done func(SimpleAPIResponse[Playlist])) CancelableOperation
		wantIDs []string
	}{
		{
			name: "add",
			call: func(c *Client, done func(SimpleAPIResponse[Playlist])) CancelableOperation {
				return c.Playlists().AddTracks(current, []int{4}, done)
			},
			wantIDs: []string{"1", "2", "3", "4"},
		},
		{
			name: "remove",
			call: func(c *Client, done func(SimpleAPIResponse[Playlist])) CancelableOperation {
				return c.Playlists().RemoveTracks(current, []int{2}, done)
			},
			wantIDs: []string{"1", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/playlists/11" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected json content type, got %s", ct)
				}

				var update struct {
					Playlist struct {
						Tracks []struct {
							ID string `json:"id"`
						} `json:"tracks"`
					} `json:"playlist"`
				}
				if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				var ids []string
				for _, tr := range update.Playlist.Tracks {
					ids = append(ids, tr.ID)
				}
				if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
					t.Errorf("track ids mismatch (-want +got):\n%s", diff)
				}
				_, _ = w.Write([]byte(playlistJSON))
			}))
			defer server.Close()

			client := newTestClient(t, server, withSession(&Session{AccessToken: "access"}))
			resp := wait(t, func(done func(SimpleAPIResponse[Playlist])) CancelableOperation {
				return tt.call(client, done)
			})
			if !resp.Response.IsSuccess() {
				t.Error("expected success")
			}
		})
	}
}
