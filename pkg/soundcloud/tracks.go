package soundcloud

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
)

// TrackService provides track operations.
type TrackService struct {
	client *Client
}

// SearchQuery filters a track search. Empty fields are not sent.
type SearchQuery struct {
	Query  string
	Tags   []string
	Genres []string
	Types  []TrackType
}

// searchParams is the wire form of SearchQuery; lists are comma joined.
type searchParams struct {
	Q      string `schema:"q,omitempty"`
	Tags   string `schema:"tags,omitempty"`
	Genres string `schema:"genres,omitempty"`
	Types  string `schema:"types,omitempty"`
}

var searchEncoder = schema.NewEncoder()

// encode adds the query's parameters to q.
func (s SearchQuery) encode(q *Query) error {
	types := make([]string, len(s.Types))
	for i, t := range s.Types {
		types[i] = string(t)
	}

	values := make(map[string][]string)
	err := searchEncoder.Encode(searchParams{
		Q:      s.Query,
		Tags:   strings.Join(s.Tags, ","),
		Genres: strings.Join(s.Genres, ","),
		Types:  strings.Join(types, ","),
	}, values)
	if err != nil {
		return fmt.Errorf("failed to encode search query: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, strings.Join(values[k], ","))
	}
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Track loads a track.
//
// Example:
//
//	client.Tracks().Track(123, func(resp soundcloud.SimpleAPIResponse[soundcloud.Track]) {
//	    if track, ok := resp.Response.Value(); ok {
//	        fmt.Println(track.Title)
//	    }
//	})
func (s *TrackService) Track(id int, completion func(SimpleAPIResponse[Track])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("tracks/%d.json", id),
		params: q,
	}, one(c.decoder().track), completion)
}

// List loads several tracks at once. Tracks that cannot be decoded are
// left out.
func (s *TrackService) List(ids []int, completion func(SimpleAPIResponse[[]Track])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   "tracks",
		params: q.Set("ids", joinIDs(ids)),
	}, many(c.decoder().track), completion)
}

// Search lists the tracks matching query.
func (s *TrackService) Search(query SearchQuery, completion func(PaginatedAPIResponse[Track])) CancelableOperation {
	c := s.client
	q, err := c.pageQuery()
	if err != nil {
		return failPage(c, err, completion)
	}
	if err := query.encode(q); err != nil {
		return failPage(c, ParsingError(err), completion)
	}
	return fetchPage(c, call{
		method: MethodGet,
		path:   "tracks",
		params: q,
	}, many(c.decoder().track), completion)
}

// Comments lists the comments posted on a track.
func (s *TrackService) Comments(id int, completion func(PaginatedAPIResponse[Comment])) CancelableOperation {
	c := s.client
	q, err := c.pageQuery()
	if err != nil {
		return failPage(c, err, completion)
	}
	return fetchPage(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("tracks/%d/comments.json", id),
		params: q,
	}, many(c.decoder().comment), completion)
}

// Comment posts body on a track at the given position. It requires a
// session.
func (s *TrackService) Comment(id int, body string, at time.Duration, completion func(SimpleAPIResponse[Comment])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return sessionSimple(c, func(token string) call {
		params := NewQuery().Merge(q).
			Set("comment[body]", body).
			Set("comment[timestamp]", strconv.FormatInt(at.Milliseconds(), 10)).
			Set("oauth_token", token)
		return call{
			method: MethodPost,
			path:   fmt.Sprintf("tracks/%d/comments.json", id),
			params: params,
		}
	}, one(c.decoder().comment), completion)
}

// Favoriters lists the users who favorited a track.
func (s *TrackService) Favoriters(id int, completion func(PaginatedAPIResponse[User])) CancelableOperation {
	c := s.client
	q, err := c.pageQuery()
	if err != nil {
		return failPage(c, err, completion)
	}
	return fetchPage(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("tracks/%d/favoriters.json", id),
		params: q,
	}, many(c.decoder().user), completion)
}

// Favorite adds a track to the favorites of userID. It requires a
// session.
func (s *TrackService) Favorite(userID, id int, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	return s.setFavorite(userID, id, true, completion)
}

// Unfavorite removes a track from the favorites of userID. It requires
// a session.
func (s *TrackService) Unfavorite(userID, id int, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	return s.setFavorite(userID, id, false, completion)
}

func (s *TrackService) setFavorite(userID, id int, favorite bool, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	method := MethodDelete
	if favorite {
		method = MethodPut
	}
	return sessionSimple(c, func(token string) call {
		return call{
			method: method,
			path:   fmt.Sprintf("users/%d/favorites/%d.json", userID, id),
			query:  NewQuery().Merge(q).Set("oauth_token", token),
		}
	}, acknowledged, completion)
}

// Related loads the tracks related to a track.
func (s *TrackService) Related(id int, completion func(SimpleAPIResponse[[]Track])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("tracks/%d/related", id),
		params: q,
	}, many(c.decoder().track), completion)
}

// acknowledged parses the response of a call whose body does not matter.
func acknowledged(JSON) Result[bool, *Error] {
	return Success[bool, *Error](true)
}
