package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"
)

const (
	testUser     = "owner"
	testPassword = "secret"
	testToken    = "tok-1"
	testAPIKey   = "key-1"
)

// recorded is a request seen by the mock Service Manager.
type recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// mockServer is a minimal Service Manager. Replies are looked up by
// "METHOD /path"; unknown routes answer Success with no data.
type mockServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
	replies  map[string]map[string]any
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{replies: map[string]map[string]any{}}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

// reply registers the body returned for a route.
func (m *mockServer) reply(route string, body map[string]any) {
	m.replies[route] = body
}

func (m *mockServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.requests = append(m.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/api/user/login":
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.Unmarshal(body, &req)
		if req.Username != testUser || req.Password != testPassword {
			jsonResponse(w, http.StatusUnauthorized, map[string]any{"code": 2, "description": "invalid credentials"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{"code": 0, "description": "logged in", "session_token": testToken})
		return
	case strings.HasPrefix(r.URL.Path, "/api/"):
		if r.Header.Get("X-EasyTV-Session") != testToken {
			jsonResponse(w, http.StatusUnauthorized, map[string]any{"code": 1, "description": "unauthorized"})
			return
		}
	case strings.HasPrefix(r.URL.Path, "/internal/"):
		if r.Header.Get("X-EasyTV-Key") != testAPIKey {
			jsonResponse(w, http.StatusUnauthorized, map[string]any{"code": 1, "description": "invalid key"})
			return
		}
	}

	if reply, ok := m.replies[r.Method+" "+r.URL.Path]; ok {
		status := http.StatusOK
		if code, _ := reply["code"].(int); code != 0 {
			status = http.StatusBadRequest
		}
		jsonResponse(w, status, reply)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"code": 0, "description": "OK"})
}

// routes returns "METHOD /path" for every recorded request.
func (m *mockServer) routes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

// find returns the last request to path.
func (m *mockServer) find(t *testing.T, method, path string) recorded {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.requests) - 1; i >= 0; i-- {
		if m.requests[i].Method == method && m.requests[i].Path == path {
			return m.requests[i]
		}
	}
	t.Fatalf("no %s %s request, saw %v", method, path, m.requestsLocked())
	return recorded{}
}

func (m *mockServer) requestsLocked() []string {
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// result captures one CLI run.
type result struct {
	stdout string
	stderr string
	err    error
}

// run executes smctl against server with a private, absent config file.
func run(t *testing.T, server *mockServer, args ...string) result {
	t.Helper()
	return runWith(t, filepath.Join(t.TempDir(), "config.yaml"), "", server, args...)
}

// runWith executes smctl with an explicit config path and stdin.
func runWith(t *testing.T, configPath, stdin string, server *mockServer, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := []string{"smctl", "--config", configPath}
	if server != nil {
		full = append(full, "--server", server.URL)
	}
	full = append(full, args...)

	err := app.Run(full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return m
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
