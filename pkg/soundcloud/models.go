package soundcloud

import (
	"net/url"
	"strings"
	"time"
)

// TrackType is the kind of recording a track is.
type TrackType string

// Track types.
const (
	TrackTypeOriginal    TrackType = "original"
	TrackTypeRemix       TrackType = "remix"
	TrackTypeLive        TrackType = "live"
	TrackTypeRecording   TrackType = "recording"
	TrackTypeSpoken      TrackType = "spoken"
	TrackTypePodcast     TrackType = "podcast"
	TrackTypeDemo        TrackType = "demo"
	TrackTypeInProgress  TrackType = "in progress"
	TrackTypeStem        TrackType = "stem"
	TrackTypeLoop        TrackType = "loop"
	TrackTypeSoundEffect TrackType = "sound effect"
	TrackTypeSample      TrackType = "sample"
	TrackTypeOther       TrackType = "other"
)

// PlaylistType is the kind of release a playlist is.
type PlaylistType string

// Playlist types.
const (
	PlaylistTypeEPSingle     PlaylistType = "ep single"
	PlaylistTypeAlbum        PlaylistType = "album"
	PlaylistTypeCompilation  PlaylistType = "compilation"
	PlaylistTypeProjectFiles PlaylistType = "project files"
	PlaylistTypeArchive      PlaylistType = "archive"
	PlaylistTypeShowcase     PlaylistType = "showcase"
	PlaylistTypeDemo         PlaylistType = "demo"
	PlaylistTypeSamplePack   PlaylistType = "sample pack"
	PlaylistTypeOther        PlaylistType = "other"
)

// SharingAccess is the visibility of a playlist.
type SharingAccess string

// Sharing values.
const (
	SharingPublic  SharingAccess = "public"
	SharingPrivate SharingAccess = "private"
)

// App is the application a track was uploaded with.
type App struct {
	ID           int
	URI          *url.URL
	PermalinkURL *url.URL
	Name         string
}

// User is a SoundCloud account.
type User struct {
	ID             int
	Username       string
	FullName       string
	City           string
	Country        string
	Description    string
	URI            *url.URL
	PermalinkURL   *url.URL
	Website        *url.URL
	WebsiteTitle   string
	Avatar         ImageURLs
	TrackCount     int
	PlaylistCount  int
	FollowersCount int
	FollowingCount int
}

// Track is an uploaded sound.
type Track struct {
	ID                  int
	CreatedAt           time.Time
	User                User
	CreatedWith         *App
	Duration            time.Duration
	Commentable         bool
	Streamable          bool
	Downloadable        bool
	StreamURL           *url.URL
	DownloadURL         *url.URL
	PermalinkURL        *url.URL
	ReleaseYear         int
	ReleaseMonth        int
	ReleaseDay          int
	Tags                []string
	Description         string
	Genre               string
	TrackType           TrackType
	Title               string
	OriginalFormat      string
	OriginalContentSize int64
	Artwork             ImageURLs
	Waveform            ImageURLs
	PlaybackCount       int
	DownloadCount       int
	FavoritingsCount    int
	CommentCount        int
	BPM                 float64
}

// Playlist is an ordered set of tracks.
type Playlist struct {
	ID           int
	CreatedAt    time.Time
	User         User
	Title        string
	Description  string
	Duration     time.Duration
	Genre        string
	Tags         []string
	PermalinkURL *url.URL
	PurchaseURL  *url.URL
	Release      string
	ReleaseYear  int
	ReleaseMonth int
	ReleaseDay   int
	PlaylistType PlaylistType
	Tracks       []Track
	EAN          string
	Sharing      SharingAccess
	LabelID      int
	LabelName    string
	License      string
	Artwork      ImageURLs
}

// Comment is a timed comment on a track.
type Comment struct {
	ID        int
	CreatedAt time.Time
	Body      string
	TrackID   int
	UserID    int
	Timestamp time.Duration // position in the track
	User      *User
}

// decoder builds models from API documents. URLs it returns carry the
// client ID, which the API requires on stream and download links.
type decoder struct {
	clientID string
}

func (d decoder) url(j JSON) *url.URL {
	u, ok := j.URLValue()
	if !ok {
		return nil
	}
	if d.clientID != "" {
		q := u.Query()
		if q.Get("client_id") == "" {
			q.Set("client_id", d.clientID)
			u.RawQuery = q.Encode()
		}
	}
	return u
}

func stringOf(j JSON) string {
	s, _ := j.StringValue()
	return s
}

func intOf(j JSON) int {
	n, _ := j.IntValue()
	return n
}

func boolOf(j JSON) bool {
	b, _ := j.BoolValue()
	return b
}

func dateOf(j JSON) time.Time {
	t, _ := j.DateValue(DateLayout)
	return t
}

func millisOf(j JSON) time.Duration {
	n, _ := j.Int64Value()
	return time.Duration(n) * time.Millisecond
}

// tagsOf splits a tag_list. Multi-word tags are quoted.
func tagsOf(j JSON) []string {
	s := stringOf(j)
	if s == "" {
		return nil
	}
	var tags []string
	for len(s) > 0 {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			break
		}
		if s[0] == '"' {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				tags = append(tags, s[1:])
				break
			}
			tags = append(tags, s[1:end+1])
			s = s[end+2:]
			continue
		}
		end := strings.IndexByte(s, ' ')
		if end < 0 {
			tags = append(tags, s)
			break
		}
		tags = append(tags, s[:end])
		s = s[end:]
	}
	return tags
}

func (d decoder) app(j JSON) (App, bool) {
	id, ok := j.Key("id").IntValue()
	if !ok {
		return App{}, false
	}
	return App{
		ID:           id,
		URI:          d.url(j.Key("uri")),
		PermalinkURL: d.url(j.Key("permalink_url")),
		Name:         stringOf(j.Key("name")),
	}, true
}

func (d decoder) user(j JSON) (User, bool) {
	id, ok := j.Key("id").IntValue()
	if !ok {
		return User{}, false
	}
	username, ok := j.Key("username").StringValue()
	if !ok {
		return User{}, false
	}
	return User{
		ID:             id,
		Username:       username,
		FullName:       stringOf(j.Key("full_name")),
		City:           stringOf(j.Key("city")),
		Country:        stringOf(j.Key("country")),
		Description:    stringOf(j.Key("description")),
		URI:            d.url(j.Key("uri")),
		PermalinkURL:   d.url(j.Key("permalink_url")),
		Website:        d.url(j.Key("website")),
		WebsiteTitle:   stringOf(j.Key("website_title")),
		Avatar:         imageURLsOf(j.Key("avatar_url")),
		TrackCount:     intOf(j.Key("track_count")),
		PlaylistCount:  intOf(j.Key("playlist_count")),
		FollowersCount: intOf(j.Key("followers_count")),
		FollowingCount: intOf(j.Key("followings_count")),
	}, true
}

func (d decoder) track(j JSON) (Track, bool) {
	id, ok := j.Key("id").IntValue()
	if !ok {
		return Track{}, false
	}
	user, ok := d.user(j.Key("user"))
	if !ok {
		return Track{}, false
	}

	t := Track{
		ID:               id,
		CreatedAt:        dateOf(j.Key("created_at")),
		User:             user,
		Duration:         millisOf(j.Key("duration")),
		Commentable:      boolOf(j.Key("commentable")),
		Streamable:       boolOf(j.Key("streamable")),
		Downloadable:     boolOf(j.Key("downloadable")),
		StreamURL:        d.url(j.Key("stream_url")),
		DownloadURL:      d.url(j.Key("download_url")),
		PermalinkURL:     d.url(j.Key("permalink_url")),
		ReleaseYear:      intOf(j.Key("release_year")),
		ReleaseMonth:     intOf(j.Key("release_month")),
		ReleaseDay:       intOf(j.Key("release_day")),
		Tags:             tagsOf(j.Key("tag_list")),
		Description:      stringOf(j.Key("description")),
		Genre:            stringOf(j.Key("genre")),
		TrackType:        TrackType(stringOf(j.Key("track_type"))),
		Title:            stringOf(j.Key("title")),
		OriginalFormat:   stringOf(j.Key("original_format")),
		Artwork:          imageURLsOf(j.Key("artwork_url")),
		Waveform:         imageURLsOf(j.Key("waveform_url")),
		PlaybackCount:    intOf(j.Key("playback_count")),
		DownloadCount:    intOf(j.Key("download_count")),
		FavoritingsCount: intOf(j.Key("favoritings_count")),
		CommentCount:     intOf(j.Key("comment_count")),
	}
	t.OriginalContentSize, _ = j.Key("original_content_size").Int64Value()
	t.BPM, _ = j.Key("bpm").FloatValue()
	if app, ok := d.app(j.Key("created_with")); ok {
		t.CreatedWith = &app
	}
	return t, true
}

func (d decoder) playlist(j JSON) (Playlist, bool) {
	if kind, _ := j.Key("kind").StringValue(); kind != "playlist" {
		return Playlist{}, false
	}
	id, ok := j.Key("id").IntValue()
	if !ok {
		return Playlist{}, false
	}
	user, ok := d.user(j.Key("user"))
	if !ok {
		return Playlist{}, false
	}

	p := Playlist{
		ID:           id,
		CreatedAt:    dateOf(j.Key("created_at")),
		User:         user,
		Title:        stringOf(j.Key("title")),
		Description:  stringOf(j.Key("description")),
		Duration:     millisOf(j.Key("duration")),
		Genre:        stringOf(j.Key("genre")),
		Tags:         tagsOf(j.Key("tag_list")),
		PermalinkURL: d.url(j.Key("permalink_url")),
		PurchaseURL:  d.url(j.Key("purchase_url")),
		Release:      stringOf(j.Key("release")),
		ReleaseYear:  intOf(j.Key("release_year")),
		ReleaseMonth: intOf(j.Key("release_month")),
		ReleaseDay:   intOf(j.Key("release_day")),
		PlaylistType: PlaylistType(stringOf(j.Key("playlist_type"))),
		EAN:          stringOf(j.Key("ean")),
		Sharing:      SharingPrivate,
		LabelID:      intOf(j.Key("label_id")),
		LabelName:    stringOf(j.Key("label_name")),
		License:      stringOf(j.Key("license")),
		Artwork:      imageURLsOf(j.Key("artwork_url")),
	}
	if sharing, _ := j.Key("sharing").StringValue(); sharing == string(SharingPublic) {
		p.Sharing = SharingPublic
	}
	p.Tracks, _ = CompactMapJSON(j.Key("tracks"), d.track)
	return p, true
}

func (d decoder) comment(j JSON) (Comment, bool) {
	id, ok := j.Key("id").IntValue()
	if !ok {
		return Comment{}, false
	}
	body, ok := j.Key("body").StringValue()
	if !ok {
		return Comment{}, false
	}

	c := Comment{
		ID:        id,
		CreatedAt: dateOf(j.Key("created_at")),
		Body:      body,
		TrackID:   intOf(j.Key("track_id")),
		UserID:    intOf(j.Key("user_id")),
		Timestamp: millisOf(j.Key("timestamp")),
	}
	if user, ok := d.user(j.Key("user")); ok {
		c.User = &user
	}
	return c, true
}

// one turns a model decoder into a parse function for a single document.
func one[T any](fn func(JSON) (T, bool)) func(JSON) Result[T, *Error] {
	return func(j JSON) Result[T, *Error] {
		v, ok := fn(j)
		if !ok {
			return Failure[T](ParsingError(nil))
		}
		return Success[T, *Error](v)
	}
}

// many turns a model decoder into a parse function for an array.
// Elements that do not decode are dropped; a non-array is a parsing
// error.
func many[T any](fn func(JSON) (T, bool)) func(JSON) Result[[]T, *Error] {
	return func(j JSON) Result[[]T, *Error] {
		items, ok := CompactMapJSON(j, fn)
		if !ok {
			return Failure[[]T](ParsingError(nil))
		}
		return Success[[]T, *Error](items)
	}
}
