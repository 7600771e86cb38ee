package soundcloud

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecoder_Track(t *testing.T) {
	d := decoder{clientID: "cid"}
	track, ok := d.track(decode(t, trackJSON(1, "Tides")))
	if !ok {
		t.Fatal("expected track to decode")
	}

	if diff := cmp.Diff([]string{"ambient", "field recording", "drone"}, track.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if track.BPM != 120.5 {
		t.Errorf("expected bpm 120.5, got %v", track.BPM)
	}
	if !track.CreatedAt.Equal(time.Date(2015, 3, 12, 10, 20, 30, 0, time.UTC)) {
		t.Errorf("unexpected created at %v", track.CreatedAt)
	}
	if got := track.StreamURL.String(); got != "https://api.soundcloud.com/tracks/1/stream?client_id=cid" {
		t.Errorf("unexpected stream url %s", got)
	}
}

func TestDecoder_RequiredFields(t *testing.T) {
	d := decoder{}
	tests := []struct {
		name   string
		doc    string
		decode func(JSON) bool
	}{
		{
			name:   "track without user",
			doc:    `{"id": 1, "title": "x"}`,
			decode: func(j JSON) bool { _, ok := d.track(j); return ok },
		},
		{
			name:   "user without username",
			doc:    `{"id": 1}`,
			decode: func(j JSON) bool { _, ok := d.user(j); return ok },
		},
		{
			name:   "playlist with wrong kind",
			doc:    `{"id": 1, "kind": "track", "user": ` + userJSON + `}`,
			decode: func(j JSON) bool { _, ok := d.playlist(j); return ok },
		},
		{
			name:   "comment without body",
			doc:    `{"id": 1}`,
			decode: func(j JSON) bool { _, ok := d.comment(j); return ok },
		},
		{
			name:   "activity without type",
			doc:    `{"origin": {}}`,
			decode: func(j JSON) bool { _, ok := d.activity(j); return ok },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.decode(decode(t, tt.doc)) {
				t.Error("expected decoding to fail")
			}
		})
	}
}

func TestDecoder_PlaylistDefaults(t *testing.T) {
	d := decoder{}
	p, ok := d.playlist(decode(t, `{"id": 2, "kind": "playlist", "user": `+userJSON+`,
		"tracks": [`+trackJSON(5, "a")+`, {"id": 6}]}`))
	if !ok {
		t.Fatal("expected playlist to decode")
	}
	if p.Sharing != SharingPrivate {
		t.Errorf("expected private sharing by default, got %s", p.Sharing)
	}
	if len(p.Tracks) != 1 || p.Tracks[0].ID != 5 {
		t.Errorf("expected undecodable tracks to be dropped, got %+v", p.Tracks)
	}
}

func TestDecoder_URLKeepsExistingClientID(t *testing.T) {
	d := decoder{clientID: "cid"}
	u := d.url(NewJSON("https://api.soundcloud.com/tracks/1/stream?client_id=other"))
	if got := u.Query().Get("client_id"); got != "other" {
		t.Errorf("expected existing client_id to be kept, got %q", got)
	}
}

func TestImageURLs(t *testing.T) {
	base, _ := url.Parse("https://i1.sndcdn.com/artworks-000-large.jpg")
	images := NewImageURLs(base)

	tests := []struct {
		name string
		got  *url.URL
		want string
	}{
		{name: "mini", got: images.Mini(), want: "https://i1.sndcdn.com/artworks-000-mini.jpg"},
		{name: "badge", got: images.Badge(), want: "https://i1.sndcdn.com/artworks-000-badge.jpg"},
		{name: "large", got: images.Large(), want: "https://i1.sndcdn.com/artworks-000-large.jpg"},
		{name: "high", got: images.High(), want: "https://i1.sndcdn.com/artworks-000-t500x500.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tt.got)
			}
		})
	}

	var empty ImageURLs
	if !empty.IsZero() || empty.Crop() != nil {
		t.Error("expected empty image urls to yield nil")
	}
}

func TestError_Is(t *testing.T) {
	err := error(&Error{Kind: KindNotFound, StatusCode: 404})
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match on kind")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("expected different kinds not to match")
	}
	if got := err.Error(); got != "soundcloud: not found (status 404)" {
		t.Errorf("unexpected message %q", got)
	}
}
