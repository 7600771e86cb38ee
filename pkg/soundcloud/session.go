package soundcloud

import (
	"time"

	"golang.org/x/oauth2"
)

// Session is an authenticated user session.
type Session struct {
	AuthorizationCode string    // code the session was obtained with
	AccessToken       string    // sent as oauth_token
	RefreshToken      string    // empty for non-expiring tokens
	Expiry            time.Time // zero for non-expiring tokens
	Scope             string
}

// Expired reports whether the access token has expired.
func (s *Session) Expired() bool {
	return !s.Expiry.IsZero() && time.Now().After(s.Expiry)
}

// newSession builds a session from a token response. A refresh without a
// new refresh token keeps the previous one.
func newSession(code string, tok *oauth2.Token, previous *Session) *Session {
	s := &Session{
		AuthorizationCode: code,
		AccessToken:       tok.AccessToken,
		RefreshToken:      tok.RefreshToken,
		Expiry:            tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		s.Scope = scope
	}
	if s.RefreshToken == "" && previous != nil {
		s.RefreshToken = previous.RefreshToken
	}
	return s
}
