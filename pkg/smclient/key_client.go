package smclient

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// assetField is the multipart field name the asset endpoint expects.
const assetField = "asset"

// KeyClient performs backend operations authenticated by a fixed API key.
// It holds no session; a rejected key just fails the call.
type KeyClient struct {
	transport *Transport
	apiKey    string
}

// NewKeyClient creates a client that sends apiKey with every request.
func NewKeyClient(apiKey, baseURI string, opts ...Option) *KeyClient {
	return &KeyClient{
		transport: NewTransport(baseURI, opts...),
		apiKey:    apiKey,
	}
}

// BaseURI returns the service base URI.
func (c *KeyClient) BaseURI() string {
	return c.transport.BaseURI()
}

// RegisterTask registers a task definition.
func (c *KeyClient) RegisterTask(ctx context.Context, task TaskRegistration) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/internal/task", "/internal/task", task.body())
}

// SetTaskAvailability enables or disables a task.
func (c *KeyClient) SetTaskAvailability(ctx context.Context, taskID string, available bool) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/internal/task/:id", "/internal/task/"+url.PathEscape(taskID), TaskAvailabilityRequest{
		Disabled: !available,
	})
}

// DeleteTask removes a task.
func (c *KeyClient) DeleteTask(ctx context.Context, taskID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/internal/task/:id", "/internal/task/"+url.PathEscape(taskID), nil)
}

// GetTasks lists the registered tasks.
func (c *KeyClient) GetTasks(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/internal/task", "/internal/task", nil)
}

// GetJobs lists jobs. The limit defaults to DefaultJobsLimit and is sent
// even when zero; use NoLimit to omit it.
func (c *KeyClient) GetJobs(ctx context.Context, opts ...ListOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/internal/job/list", keyJobsPath(newListQuery(opts)), nil)
}

// GetJob returns one job. A jobID that is not a finite number yields a nil
// response and a nil error without contacting the service.
func (c *KeyClient) GetJob(ctx context.Context, jobID string) (*Response, error) {
	if !isFiniteNumber(jobID) {
		return nil, nil
	}
	return c.do(ctx, http.MethodGet, "/internal/job/:id", "/internal/job/"+url.PathEscape(jobID), nil)
}

// SetStatus updates the status of a job.
func (c *KeyClient) SetStatus(ctx context.Context, jobID, status string) (*Response, error) {
	return c.do(ctx, http.MethodPut, "/internal/job/:id", "/internal/job/"+url.PathEscape(jobID), JobStatusRequest{
		Status: status,
	})
}

// CancelJob cancels a job.
func (c *KeyClient) CancelJob(ctx context.Context, jobID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/internal/job/:id", "/internal/job/"+url.PathEscape(jobID), nil)
}

// GetAssets lists the assets attached to a job.
func (c *KeyClient) GetAssets(ctx context.Context, jobID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/internal/job/:id/asset", "/internal/job/"+url.PathEscape(jobID)+"/asset", nil)
}

// UploadAsset streams asset to the job as a multipart/form-data body.
// filename defaults to "asset".
func (c *KeyClient) UploadAsset(ctx context.Context, asset io.Reader, filename, jobID string) (*Response, error) {
	if filename == "" {
		filename = assetField
	}
	r, err := c.transport.send(ctx, call{
		method: http.MethodPost,
		route:  "/internal/job/:id/asset",
		path:   "/internal/job/" + url.PathEscape(jobID) + "/asset",
		header: c.header(),
		upload: &upload{field: assetField, filename: filename, content: asset},
	})
	if err != nil {
		return nil, err
	}
	return interpret(r.status, r.payload, r.decodeErr)
}

// FinishJob marks a job as done with its output.
func (c *KeyClient) FinishJob(ctx context.Context, jobID string, output any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/internal/job/:id/finish", "/internal/job/"+url.PathEscape(jobID)+"/finish", FinishJobRequest{
		Output: output,
	})
}

func (c *KeyClient) header() http.Header {
	h := make(http.Header, 1)
	h.Set(KeyHeader, c.apiKey)
	return h
}

func (c *KeyClient) do(ctx context.Context, method, route, path string, body any) (*Response, error) {
	r, err := c.transport.send(ctx, call{
		method: method,
		route:  route,
		path:   path,
		header: c.header(),
		body:   body,
	})
	if err != nil {
		return nil, err
	}
	return interpret(r.status, r.payload, r.decodeErr)
}

// isFiniteNumber reports whether s, after trimming spaces, is a finite
// decimal number or an unsigned 0x, 0o or 0b integer literal.
func isFiniteNumber(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			_, err := strconv.ParseUint(s[2:], base, 64)
			return err == nil || errors.Is(err, strconv.ErrRange)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
