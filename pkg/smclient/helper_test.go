package smclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordedRequest is what the fake service saw.
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// fakeService records every request and answers with respond.
type fakeService struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeService(t *testing.T, respond http.HandlerFunc) *fakeService {
	t.Helper()
	f := &fakeService{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		respond(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeService) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

// writeResult writes a Service Manager envelope.
func writeResult(w http.ResponseWriter, status int, code ResultCode, description string, extra map[string]any) {
	body := map[string]any{
		"code":        code,
		"description": description,
	}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// okService answers login with token "tok-1" and everything else with Success.
func okService(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/user/login" {
		writeResult(w, http.StatusOK, Success, "logged in", map[string]any{"session_token": "tok-1"})
		return
	}
	writeResult(w, http.StatusOK, Success, "ok", map[string]any{"data": map[string]any{"path": r.URL.Path}})
}

func decodeBody(t *testing.T, req recordedRequest) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(req.Body, &m); err != nil {
		t.Fatalf("decode request body %q: %v", req.Body, err)
	}
	return m
}
