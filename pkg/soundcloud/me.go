package soundcloud

// MeService provides operations on the logged in user. Every call
// requires a session.
type MeService struct {
	client *Client
}

// Profile loads the logged in user.
func (s *MeService) Profile(completion func(SimpleAPIResponse[User])) CancelableOperation {
	c := s.client
	q, err := c.appQuery()
	if err != nil {
		return failSimple(c, err, completion)
	}
	return sessionSimple(c, func(token string) call {
		return call{
			method: MethodGet,
			path:   "me",
			params: NewQuery().Merge(q).Set("oauth_token", token),
		}
	}, one(c.decoder().user), completion)
}

// Activities lists the logged in user's activity feed. Entries of
// unknown types are skipped.
func (s *MeService) Activities(completion func(PaginatedAPIResponse[Activity])) CancelableOperation {
	c := s.client
	q, err := c.pageQuery()
	if err != nil {
		return failPage(c, err, completion)
	}
	return sessionPage(c, func(token string) call {
		return call{
			method: MethodGet,
			path:   "me/activities",
			params: NewQuery().Merge(q).Set("oauth_token", token),
		}
	}, many(c.decoder().activity), completion)
}
