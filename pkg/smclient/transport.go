package smclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// DefaultBaseURI is the public Service Manager deployment.
	DefaultBaseURI = "https://sm-api.easytv.eng.it"

	// SessionHeader carries the content-owner session token.
	SessionHeader = "X-EasyTV-Session"
	// KeyHeader carries the backend API key.
	KeyHeader = "X-EasyTV-Key"
	// RequestIDHeader correlates client logs with server logs.
	RequestIDHeader = "X-Request-ID"

	defaultUserAgent = "smclient-go"
	defaultTimeout   = 30 * time.Second
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger receives one debug line per request. The internal telemetry
// logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// RequestInfo describes a finished request for an Observer.
type RequestInfo struct {
	Method  string
	Route   string
	Status  int // 0 when no response was received
	Code    ResultCode
	HasCode bool
	Err     error
	Elapsed time.Duration
}

// Observer is notified about every request and every session transition.
type Observer interface {
	ObserveRequest(info RequestInfo)
	ObserveSession(loggedIn bool)
}

// Option configures the transport shared by SessionClient and KeyClient.
type Option func(*Transport)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d Doer) Option {
	return func(t *Transport) {
		if d != nil {
			t.client = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(t *Transport) {
		t.observer = o
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithRequestID sets how request IDs are derived from the context. When fn
// returns "" a fresh ULID is used.
func WithRequestID(fn func(ctx context.Context) string) Option {
	return func(t *Transport) {
		t.requestID = fn
	}
}

// Transport performs the HTTP exchange for both clients.
type Transport struct {
	baseURI   string
	client    Doer
	userAgent string
	logger    Logger
	observer  Observer
	requestID func(ctx context.Context) string
}

// NewTransport creates a transport for baseURI. An empty baseURI selects
// DefaultBaseURI.
func NewTransport(baseURI string, opts ...Option) *Transport {
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}
	if !strings.HasPrefix(baseURI, "http://") && !strings.HasPrefix(baseURI, "https://") {
		baseURI = "https://" + baseURI
	}

	t := &Transport{
		baseURI:   strings.TrimRight(baseURI, "/"),
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BaseURI returns the base URI of the transport.
func (t *Transport) BaseURI() string {
	return t.baseURI
}

// call is one request. route is the path template used in logs and metrics.
type call struct {
	method string
	route  string
	path   string
	header http.Header
	body   any
	upload *upload
}

type upload struct {
	field    string
	filename string
	content  io.Reader
}

// reply is what came back. payload is nil when the body could not be decoded,
// in which case decodeErr says why.
type reply struct {
	status    int
	payload   *Response
	decodeErr error
}

func (t *Transport) send(ctx context.Context, c call) (reply, error) {
	start := time.Now()

	var (
		body        io.Reader
		contentType string
		st          *stream
	)
	if c.upload != nil {
		st = c.upload.stream()
		body, contentType = st.pr, st.contentType()
	} else {
		var err error
		if body, contentType, err = c.encode(); err != nil {
			return reply{}, fmt.Errorf("smclient: %s %s: %w", c.method, c.route, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, c.method, t.baseURI+c.path, body)
	if err != nil {
		if st != nil {
			st.abort(err)
		}
		return reply{}, fmt.Errorf("smclient: create request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	reqID := t.newRequestID(ctx)
	req.Header.Set(RequestIDHeader, reqID)

	if st != nil {
		st.start()
		// A Doer may return without closing the body; closing the reader
		// ends the writer goroutine either way.
		defer st.abort(errBodyDone)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.observe(c, reply{}, err, time.Since(start))
		t.logger.Warn("service manager request failed",
			"method", c.method,
			"route", c.route,
			"request_id", reqID,
			"error", err,
		)
		return reply{}, fmt.Errorf("smclient: %s %s: %w", c.method, c.route, err)
	}
	defer resp.Body.Close()

	r := reply{status: resp.StatusCode}
	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.decodeErr = fmt.Errorf("decode response: %w", err)
	} else {
		r.payload = &payload
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	elapsed := time.Since(start)
	t.observe(c, r, nil, elapsed)

	args := []any{
		"method", c.method,
		"route", c.route,
		"status", r.status,
		"request_id", reqID,
		"duration", elapsed,
	}
	if r.payload.HasCode() {
		args = append(args, "code", r.payload.Code.String())
	}
	t.logger.Debug("service manager request", args...)

	return r, nil
}

func (c call) encode() (io.Reader, string, error) {
	if c.body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(c.body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// errBodyDone ends an upload stream once the request is over.
var errBodyDone = errors.New("smclient: request finished")

// stream is a multipart body written through a pipe so large assets are
// never held in memory. Nothing is written until start is called.
type stream struct {
	u  *upload
	pr *io.PipeReader
	pw *io.PipeWriter
	mw *multipart.Writer
}

func (u *upload) stream() *stream {
	pr, pw := io.Pipe()
	return &stream{u: u, pr: pr, pw: pw, mw: multipart.NewWriter(pw)}
}

func (s *stream) contentType() string {
	return s.mw.FormDataContentType()
}

// start launches the writer goroutine. It exits once the body is fully
// written or the reader is closed.
func (s *stream) start() {
	go func() {
		part, err := s.mw.CreateFormFile(s.u.field, s.u.filename)
		if err == nil {
			_, err = io.Copy(part, s.u.content)
		}
		if err == nil {
			err = s.mw.Close()
		}
		s.pw.CloseWithError(err)
	}()
}

// abort closes the reader so a blocked writer returns err.
func (s *stream) abort(err error) {
	_ = s.pr.CloseWithError(err)
}

func (t *Transport) newRequestID(ctx context.Context) string {
	if t.requestID != nil {
		if id := t.requestID(ctx); id != "" {
			return id
		}
	}
	return ulid.Make().String()
}

func (t *Transport) observe(c call, r reply, err error, elapsed time.Duration) {
	if t.observer == nil {
		return
	}
	info := RequestInfo{
		Method:  c.method,
		Route:   c.route,
		Status:  r.status,
		Err:     err,
		Elapsed: elapsed,
	}
	if r.payload.HasCode() {
		info.Code = r.payload.Code
		info.HasCode = true
	}
	t.observer.ObserveRequest(info)
}

func (t *Transport) observeSession(loggedIn bool) {
	if t.observer != nil {
		t.observer.ObserveSession(loggedIn)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
