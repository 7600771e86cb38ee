package soundcloud

// ActivityKind is the type of an entry in the activity feed.
type ActivityKind string

// Activity kinds.
const (
	ActivityTrack        ActivityKind = "track"
	ActivityTrackSharing ActivityKind = "track-sharing"
	ActivityPlaylist     ActivityKind = "playlist"
)

// Activity is an entry of the logged in user's feed. Track is set for
// ActivityTrack and ActivityTrackSharing, Playlist for ActivityPlaylist.
type Activity struct {
	Kind     ActivityKind
	Track    *Track
	Playlist *Playlist
}

func (d decoder) activity(j JSON) (Activity, bool) {
	kind, ok := j.Key("type").StringValue()
	if !ok {
		return Activity{}, false
	}

	origin := j.Key("origin")
	switch kind {
	case "track":
		t, ok := d.track(origin)
		if !ok {
			return Activity{}, false
		}
		return Activity{Kind: ActivityTrack, Track: &t}, true
	case "track-sharing", "track-repost":
		t, ok := d.track(origin)
		if !ok {
			return Activity{}, false
		}
		return Activity{Kind: ActivityTrackSharing, Track: &t}, true
	case "playlist":
		p, ok := d.playlist(origin)
		if !ok {
			return Activity{}, false
		}
		return Activity{Kind: ActivityPlaylist, Playlist: &p}, true
	}
	return Activity{}, false
}
