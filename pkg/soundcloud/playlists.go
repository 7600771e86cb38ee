package soundcloud

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// PlaylistService provides playlist operations.
type PlaylistService struct {
	client *Client
}

// Playlist loads a playlist. secretToken is only needed for private
// playlists and may be empty.
func (s *PlaylistService) Playlist(id int, secretToken string, completion func(SimpleAPIResponse[Playlist])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	if secretToken != "" {
		q.Set("secret_token", secretToken)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("playlists/%d", id),
		params: q,
	}, one(c.decoder().playlist), completion)
}

// Create creates an empty playlist owned by the logged in user.
func (s *PlaylistService) Create(title string, sharing SharingAccess, completion func(SimpleAPIResponse[Playlist])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	if sharing == "" {
		sharing = SharingPrivate
	}
	return sessionSimple(c, func(token string) call {
		return call{
			method: MethodPost,
			path:   "playlists",
			query:  NewQuery().Merge(q).Set("oauth_token", token),
			params: NewQuery(
				"playlist[title]", title,
				"playlist[sharing]", string(sharing),
			),
		}
	}, one(c.decoder().playlist), completion)
}

// AddTracks appends tracks to p. p must hold the current track list.
func (s *PlaylistService) AddTracks(p Playlist, trackIDs []int, completion func(SimpleAPIResponse[Playlist])) CancelableOperation {
	ids := make([]int, 0, len(p.Tracks)+len(trackIDs))
	for _, t := range p.Tracks {
		ids = append(ids, t.ID)
	}
	ids = append(ids, trackIDs...)
	return s.replaceTracks(p.ID, ids, completion)
}

// RemoveTracks removes every occurrence of trackIDs from p. p must hold
// the current track list.
func (s *PlaylistService) RemoveTracks(p Playlist, trackIDs []int, completion func(SimpleAPIResponse[Playlist])) CancelableOperation {
	ids := make([]int, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		if !slices.Contains(trackIDs, t.ID) {
			ids = append(ids, t.ID)
		}
	}
	return s.replaceTracks(p.ID, ids, completion)
}

type playlistTrackRef struct {
	ID string `json:"id"`
}

type playlistUpdate struct {
	Playlist struct {
		Tracks []playlistTrackRef `json:"tracks"`
	} `json:"playlist"`
}

// replaceTracks sets the full track list of playlist id.
func (s *PlaylistService) replaceTracks(id int, trackIDs []int, completion func(SimpleAPIResponse[Playlist])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}

	var update playlistUpdate
	update.Playlist.Tracks = make([]playlistTrackRef, len(trackIDs))
	for i, tid := range trackIDs {
		update.Playlist.Tracks[i] = playlistTrackRef{ID: strconv.Itoa(tid)}
	}
	body, encErr := json.Marshal(update)
	if encErr != nil {
		return failSimple(c, ParsingError(encErr), completion)
	}

	return sessionSimple(c, func(token string) call {
		return call{
			method:  MethodPut,
			path:    fmt.Sprintf("playlists/%d", id),
			query:   NewQuery().Merge(q).Set("oauth_token", token),
			params:  Body(body),
			headers: map[string]string{"Content-Type": "application/json"},
		}
	}, one(c.decoder().playlist), completion)
}
