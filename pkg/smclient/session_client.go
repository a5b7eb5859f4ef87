package smclient

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
)

// SessionClient performs content-owner operations. It starts logged out;
// Login moves it to logged in and Logout, or an Unauthorized answer on an
// eligible call, moves it back.
type SessionClient struct {
	transport *Transport
	session   atomic.Pointer[Session]
}

// NewSessionClient creates a logged-out client for baseURI.
func NewSessionClient(baseURI string, opts ...Option) *SessionClient {
	return &SessionClient{transport: NewTransport(baseURI, opts...)}
}

// BaseURI returns the service base URI.
func (c *SessionClient) BaseURI() string {
	return c.transport.BaseURI()
}

// LoggedIn reports whether the client holds a session.
func (c *SessionClient) LoggedIn() bool {
	return c.session.Load() != nil
}

// Session returns the current session, or nil when logged out.
func (c *SessionClient) Session() *Session {
	return c.session.Load()
}

// Login authenticates the user. On success the session token from the
// response becomes the client's session and the payload is returned.
func (c *SessionClient) Login(ctx context.Context, username, password string) (*Response, error) {
	r, err := c.transport.send(ctx, call{
		method: http.MethodPost,
		route:  "/api/user/login",
		path:   "/api/user/login",
		body:   LoginRequest{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}

	payload, err := interpret(r.status, r.payload, r.decodeErr)
	if err != nil {
		return nil, err
	}

	c.session.Store(newSession(payload.SessionToken))
	c.transport.observeSession(true)
	return payload, nil
}

// Logout ends the session. The client is logged out afterwards whatever
// the service answers; only a transport failure is reported, and even then
// the local session is gone.
func (c *SessionClient) Logout(ctx context.Context) (bool, error) {
	s, err := c.current()
	if err != nil {
		return false, err
	}

	_, err = c.transport.send(ctx, call{
		method: http.MethodDelete,
		route:  "/api/user/logout",
		path:   "/api/user/logout",
		header: s.header(),
	})
	c.drop(s)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks that the session is still valid.
func (c *SessionClient) Ping(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/api/user/ping", "/api/user/ping", nil, true)
}

// ChangePassword changes the user's password. newPassword and
// confirmPassword must match; that is checked before any request. A wrong
// old password does not end the session.
func (c *SessionClient) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (*Response, error) {
	if _, err := c.current(); err != nil {
		return nil, err
	}
	if newPassword != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	return c.do(ctx, http.MethodPost, "/api/user/change_password", "/api/user/change_password", ChangePasswordRequest{
		OldPassword:             oldPassword,
		NewPassword:             newPassword,
		NewPasswordVerification: confirmPassword,
	}, false)
}

// GetServices lists the services available to the user.
func (c *SessionClient) GetServices(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/api/service", "/api/service", nil, true)
}

// GetService returns one service.
func (c *SessionClient) GetService(ctx context.Context, serviceID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/api/service/:id", "/api/service/"+url.PathEscape(serviceID), nil, true)
}

// PostJob submits a job made of the given tasks.
func (c *SessionClient) PostJob(ctx context.Context, publicationDate, expirationDate string, tasks any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/api/job", "/api/job", PostJobRequest{
		PublicationDate: publicationDate,
		ExpirationDate:  expirationDate,
		Tasks:           tasks,
	}, true)
}

// CancelJob cancels a job.
func (c *SessionClient) CancelJob(ctx context.Context, jobID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/api/job/:id", "/api/job/"+url.PathEscape(jobID), nil, true)
}

// GetJobs lists the user's jobs, DefaultJobsLimit at a time unless told
// otherwise. Before is only honoured together with a non-zero limit.
func (c *SessionClient) GetJobs(ctx context.Context, opts ...ListOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/api/job/list", sessionJobsPath(newListQuery(opts)), nil, true)
}

// GetJob returns one job.
func (c *SessionClient) GetJob(ctx context.Context, jobID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/api/job/:id", "/api/job/"+url.PathEscape(jobID), nil, true)
}

func (c *SessionClient) current() (*Session, error) {
	s := c.session.Load()
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	return s, nil
}

// drop logs out s. A session installed by a later Login is left alone.
func (c *SessionClient) drop(s *Session) {
	if c.session.CompareAndSwap(s, nil) {
		c.transport.observeSession(false)
	}
}

// do runs an authenticated call with the session current at call time.
func (c *SessionClient) do(ctx context.Context, method, route, path string, body any, autoLogout bool) (*Response, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}

	r, err := c.transport.send(ctx, call{
		method: method,
		route:  route,
		path:   path,
		header: s.header(),
		body:   body,
	})
	if err != nil {
		return nil, err
	}

	payload, err := interpret(r.status, r.payload, r.decodeErr)
	if err != nil && autoLogout && r.payload != nil && r.payload.Code == Unauthorized {
		c.drop(s)
	}
	return payload, err
}
