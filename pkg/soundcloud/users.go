package soundcloud

import "fmt"

// UserService provides user operations.
type UserService struct {
	client *Client
}

// User loads a user.
func (s *UserService) User(id int, completion func(SimpleAPIResponse[User])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return fetchSimple(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("users/%d.json", id),
		params: q,
	}, one(c.decoder().user), completion)
}

// Tracks lists the tracks uploaded by a user.
func (s *UserService) Tracks(id int, completion func(PaginatedAPIResponse[Track])) CancelableOperation {
	c := s.client
	return userListing(c, id, "tracks", c.decoder().track, completion)
}

// Comments lists the comments posted by a user.
func (s *UserService) Comments(id int, completion func(PaginatedAPIResponse[Comment])) CancelableOperation {
	c := s.client
	return userListing(c, id, "comments", c.decoder().comment, completion)
}

// Favorites lists the tracks a user favorited.
func (s *UserService) Favorites(id int, completion func(PaginatedAPIResponse[Track])) CancelableOperation {
	c := s.client
	return userListing(c, id, "favorites", c.decoder().track, completion)
}

// Followers lists the users following a user.
func (s *UserService) Followers(id int, completion func(PaginatedAPIResponse[User])) CancelableOperation {
	c := s.client
	return userListing(c, id, "followers", c.decoder().user, completion)
}

// Followings lists the users a user follows.
func (s *UserService) Followings(id int, completion func(PaginatedAPIResponse[User])) CancelableOperation {
	c := s.client
	return userListing(c, id, "followings", c.decoder().user, completion)
}

// Playlists lists the playlists of a user.
func (s *UserService) Playlists(id int, completion func(PaginatedAPIResponse[Playlist])) CancelableOperation {
	c := s.client
	return userListing(c, id, "playlists", c.decoder().playlist, completion)
}

// Follow makes the logged in user follow id.
func (s *UserService) Follow(id int, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	return s.setFollowing(id, true, completion)
}

// Unfollow makes the logged in user stop following id.
func (s *UserService) Unfollow(id int, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	return s.setFollowing(id, false, completion)
}

func (s *UserService) setFollowing(id int, follow bool, completion func(SimpleAPIResponse[bool])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	method := MethodDelete
	if follow {
		method = MethodPut
	}
	return sessionSimple(c, func(token string) call {
		return call{
			method: method,
			path:   fmt.Sprintf("me/followings/%d.json", id),
			query:  NewQuery().Merge(q).Set("oauth_token", token),
		}
	}, acknowledged, completion)
}

func userListing[T any](c *Client, id int, relation string, decode func(JSON) (T, bool), completion func(PaginatedAPIResponse[T])) CancelableOperation {
	q, err := c.pageQuery()
	if err != nil {
		return failPage(c, err, completion)
	}
	return fetchPage(c, call{
		method: MethodGet,
		path:   fmt.Sprintf("users/%d/%s.json", id, relation),
		params: q,
	}, many(decode), completion)
}
