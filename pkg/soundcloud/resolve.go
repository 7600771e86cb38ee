package soundcloud

// ResolveResponse is the resource a permalink resolved to. Exactly one
// of the fields is set.
type ResolveResponse struct {
	Users    []User
	Tracks   []Track
	Playlist *Playlist
}

// Resolve looks up the resource behind a soundcloud.com permalink.
func (c *Client) Resolve(permalink string, completion func(SimpleAPIResponse[ResolveResponse])) CancelableOperation {
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   "resolve",
		params: q.Set("url", permalink),
	}, c.decoder().resolve, completion)
}

// resolve tries, in order, a user, a playlist, a track, a list of users
// and a list of tracks.
func (d decoder) resolve(j JSON) Result[ResolveResponse, *Error] {
	if u, ok := d.user(j); ok {
		return Success[ResolveResponse, *Error](ResolveResponse{Users: []User{u}})
	}
	if p, ok := d.playlist(j); ok {
		return Success[ResolveResponse, *Error](ResolveResponse{Playlist: &p})
	}
	if t, ok := d.track(j); ok {
		return Success[ResolveResponse, *Error](ResolveResponse{Tracks: []Track{t}})
	}
	if users, ok := CompactMapJSON(j, d.user); ok && len(users) > 0 {
		return Success[ResolveResponse, *Error](ResolveResponse{Users: users})
	}
	if tracks, ok := CompactMapJSON(j, d.track); ok && len(tracks) > 0 {
		return Success[ResolveResponse, *Error](ResolveResponse{Tracks: tracks})
	}
	return Failure[ResolveResponse](ParsingError(nil))
}
