package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/mattn/go-runewidth"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "truncate wide characters and pad the gap",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ",
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fit(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("fit(%q, %d) = %q, expected %q", tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				if w := runewidth.StringWidth(result); w != tt.width {
					t.Errorf("fit(%q, %d) produced width %d", tt.input, tt.width, w)
				}
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{90 * time.Second, "1:30"},
		{59*time.Second + 600*time.Millisecond, "1:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTrack(t *testing.T) {
	track := soundcloud.Track{
		Title:    "Flight",
		Duration: 3*time.Minute + 5*time.Second,
		User:     soundcloud.User{Username: "artist"},
	}

	got, err := formatTrack(track, "{{.User.Username}} - {{.Title}} [{{duration .Duration}}]")
	if err != nil {
		t.Fatalf("formatTrack() error = %v", err)
	}
	if want := "artist - Flight [3:05]"; got != want {
		t.Errorf("formatTrack() = %q, want %q", got, want)
	}

	if _, err := formatTrack(track, "{{.Nope"); err == nil {
		t.Error("formatTrack() with invalid template succeeded")
	}
}

func TestPrintTables(t *testing.T) {
	user := soundcloud.User{ID: 7, Username: "artist", FullName: "The Artist", FollowersCount: 12}
	track := soundcloud.Track{ID: 42, Title: "Flight", User: user, Duration: 95 * time.Second, Genre: "House"}

	tests := []struct {
		name  string
		print func(buf *bytes.Buffer)
		want  []string
	}{
		{
			name:  "tracks",
			print: func(buf *bytes.Buffer) { printTracks(buf, []soundcloud.Track{track}) },
			want:  []string{"Flight", "artist", "1:35", "House"},
		},
		{
			name:  "no tracks",
			print: func(buf *bytes.Buffer) { printTracks(buf, nil) },
			want:  []string{"No tracks found."},
		},
		{
			name:  "users",
			print: func(buf *bytes.Buffer) { printUsers(buf, []soundcloud.User{user}) },
			want:  []string{"artist", "The Artist", "12"},
		},
		{
			name: "playlist",
			print: func(buf *bytes.Buffer) {
				printPlaylist(buf, soundcloud.Playlist{Title: "Mix", User: user, Sharing: soundcloud.SharingPublic, Tracks: []soundcloud.Track{track}})
			},
			want: []string{"Mix by artist (public", "Flight"},
		},
		{
			name: "comments",
			print: func(buf *bytes.Buffer) {
				printComments(buf, []soundcloud.Comment{{Body: "nice drop", Timestamp: 90 * time.Second, User: &user}})
			},
			want: []string{"1:30", "artist", "nice drop"},
		},
		{
			name: "activities",
			print: func(buf *bytes.Buffer) {
				printActivities(buf, []soundcloud.Activity{{Kind: soundcloud.ActivityTrack, Track: &track}})
			},
			want: []string{"track", "42", "Flight"},
		},
		{
			name: "actions",
			print: func(buf *bytes.Buffer) {
				printActions(buf, []outbox.Action{{ID: 1, Kind: outbox.KindFollow, TargetID: 9, Status: outbox.StatusPending}})
			},
			want: []string{"follow", "9", "pending"},
		},
		{
			name:  "track detail",
			print: func(buf *bytes.Buffer) { printTrack(buf, track) },
			want:  []string{"Flight", "artist", "1:35", "Link:", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}
