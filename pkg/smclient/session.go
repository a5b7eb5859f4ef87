package smclient

import (
	"net/http"
	"time"
)

// Session is an immutable content-owner session. A SessionClient replaces
// its *Session as a whole on login and logout; a request keeps the session
// it started with.
type Session struct {
	token      string
	loggedInAt time.Time
}

func newSession(token string) *Session {
	return &Session{token: token, loggedInAt: time.Now()}
}

// Token returns the opaque session token.
func (s *Session) Token() string {
	return s.token
}

// LoggedInAt returns when the session was established.
func (s *Session) LoggedInAt() time.Time {
	return s.loggedInAt
}

// header returns the request header that authenticates this session.
func (s *Session) header() http.Header {
	h := make(http.Header, 1)
	h.Set(SessionHeader, s.token)
	return h
}
