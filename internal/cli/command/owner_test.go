package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/easytv/smclient-go/pkg/smclient"
)

func ownerArgs(args ...string) []string {
	return append([]string{"-u", testUser, "--password", testPassword}, args...)
}

func TestOwnerPing_LogsInAndOut(t *testing.T) {
	srv := newMockServer(t)
	srv.reply("GET /api/user/ping", map[string]any{"code": 0, "description": "pong"})

	res := run(t, srv, ownerArgs("owner", "ping")...)
	if res.err != nil {
		t.Fatalf("run error = %v (stderr %q)", res.err, res.stderr)
	}

	want := []string{"POST /api/user/login", "GET /api/user/ping", "DELETE /api/user/logout"}
	if got := srv.routes(); !equalStrings(got, want) {
		t.Errorf("routes = %v, want %v", got, want)
	}
	if strings.TrimSpace(res.stdout) != "pong" {
		t.Errorf("stdout = %q, want pong", res.stdout)
	}

	ping := srv.find(t, "GET", "/api/user/ping")
	if ping.Header.Get("X-EasyTV-Session") != testToken {
		t.Errorf("session header = %q", ping.Header.Get("X-EasyTV-Session"))
	}
	if !strings.HasPrefix(ping.Header.Get("User-Agent"), "smctl/") {
		t.Errorf("User-Agent = %q", ping.Header.Get("User-Agent"))
	}
	login := srv.find(t, "POST", "/api/user/login")
	if login.Header.Get("X-Request-ID") == "" || login.Header.Get("X-Request-ID") != ping.Header.Get("X-Request-ID") {
		t.Errorf("request IDs = %q / %q, want one ID per command", login.Header.Get("X-Request-ID"), ping.Header.Get("X-Request-ID"))
	}
}

func TestOwnerPing_NoCredentials(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, "owner", "ping")
	if !errors.Is(res.err, smclient.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", res.err)
	}
	if len(srv.routes()) != 0 {
		t.Errorf("routes = %v, want none", srv.routes())
	}
}

func TestOwnerPing_PasswordNotOnTerminal(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, "-u", testUser, "owner", "ping")
	if res.err == nil || !strings.Contains(res.err.Error(), "password required") {
		t.Fatalf("err = %v, want password required", res.err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, "-u", testUser, "--password", "nope", "owner", "ping")
	if res.err == nil || !strings.Contains(res.err.Error(), "login failed") {
		t.Fatalf("err = %v, want login failed", res.err)
	}
	if !errors.Is(res.err, smclient.ErrService) {
		t.Errorf("err = %v, want a service error", res.err)
	}
	if got := srv.routes(); !equalStrings(got, []string{"POST /api/user/login"}) {
		t.Errorf("routes = %v", got)
	}
}

func TestLogin_Command(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, "--password", testPassword, "login", testUser)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Logged in as owner") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if got := srv.routes(); !equalStrings(got, []string{"POST /api/user/login", "DELETE /api/user/logout"}) {
		t.Errorf("routes = %v", got)
	}
}

func TestLogout_NotLoggedIn(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, "logout")
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Not logged in") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestOwnerJobsList_Paths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		path string
	}{
		{"default", nil, "/api/job/limit/50"},
		{"limit and before", []string{"--limit", "10", "--before", "j9"}, "/api/job/limit/10/before/j9"},
		{"zero limit drops before", []string{"--limit", "0", "--before", "j9"}, "/api/job"},
		{"no limit", []string{"--no-limit"}, "/api/job"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			args := ownerArgs(append([]string{"owner", "jobs", "list"}, tt.args...)...)

			if res := run(t, srv, args...); res.err != nil {
				t.Fatalf("run error = %v", res.err)
			}
			srv.find(t, "GET", tt.path)
		})
	}
}

func TestOwnerServicesList_Table(t *testing.T) {
	srv := newMockServer(t)
	srv.reply("GET /api/service", map[string]any{
		"code":        0,
		"description": "OK",
		"data": []map[string]any{
			{"id": "s1", "name": "subtitles", "tasks": []string{"a", "b"}},
			{"id": "s2", "name": "sign language"},
		},
	})

	res := run(t, srv, ownerArgs("owner", "services", "list")...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("stdout = %q", res.stdout)
	}
	if f := strings.Fields(lines[0]); !equalStrings(f, []string{"ID", "NAME", "TASKS"}) {
		t.Errorf("header = %v", f)
	}
	if !strings.Contains(lines[1], "subtitles") || !strings.Contains(lines[1], "[2 items]") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestOwnerServicesGet_JSON(t *testing.T) {
	srv := newMockServer(t)
	srv.reply("GET /api/service/s1", map[string]any{
		"code":        0,
		"description": "OK",
		"data":        map[string]any{"id": "s1"},
	})

	res := run(t, srv, ownerArgs("-o", "json", "owner", "services", "get", "s1")...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	out := decodeJSON(t, []byte(res.stdout))
	if out["code"] != float64(0) {
		t.Errorf("code = %v", out["code"])
	}
	data, _ := out["data"].(map[string]any)
	if data["id"] != "s1" {
		t.Errorf("data = %v", out["data"])
	}
}

func TestOwnerServicesGet_MissingID(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "services", "get")...)
	if res.err == nil || !strings.Contains(res.err.Error(), "service ID required") {
		t.Fatalf("err = %v", res.err)
	}
	if len(srv.routes()) != 0 {
		t.Errorf("routes = %v, want none", srv.routes())
	}
}

func TestOwnerJobsPost(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "jobs", "post",
		"--publication-date", "2026-01-01",
		"--expiration-date", "2026-12-31",
		"--tasks", `[{"name":"subtitles"}]`,
	)...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	req := srv.find(t, "POST", "/api/job")
	if req.Header.Get("X-EasyTV-Session") != testToken {
		t.Error("post job must carry the session header")
	}
	body := decodeJSON(t, req.Body)
	if body["publication_date"] != "2026-01-01" || body["expiration_date"] != "2026-12-31" {
		t.Errorf("body = %v", body)
	}
	tasks, ok := body["tasks"].([]any)
	if !ok || len(tasks) != 1 {
		t.Errorf("tasks = %v", body["tasks"])
	}
}

func TestOwnerJobsPost_InvalidTasks(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "jobs", "post",
		"--publication-date", "a", "--expiration-date", "b", "--tasks", "{nope",
	)...)
	if res.err == nil || !strings.Contains(res.err.Error(), "--tasks") {
		t.Fatalf("err = %v", res.err)
	}
	if len(srv.routes()) != 0 {
		t.Errorf("routes = %v, want none", srv.routes())
	}
}

func TestOwnerJobsCancel(t *testing.T) {
	srv := newMockServer(t)

	if res := run(t, srv, ownerArgs("owner", "jobs", "cancel", "j1")...); res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	srv.find(t, "DELETE", "/api/job/j1")
}

func TestOwnerJobsGet_ServiceError(t *testing.T) {
	srv := newMockServer(t)
	srv.reply("GET /api/job/j404", map[string]any{"code": 7, "description": "no such job"})

	res := run(t, srv, ownerArgs("owner", "jobs", "get", "j404")...)
	if res.err == nil || !strings.Contains(res.err.Error(), "no such job") {
		t.Fatalf("err = %v", res.err)
	}
	if smclient.StatusOf(res.err) != 400 {
		t.Errorf("status = %d", smclient.StatusOf(res.err))
	}
}

func TestOwnerPassword(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "password", "--old", "secret", "--new", "better", "--confirm", "better")...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Password changed") {
		t.Errorf("stdout = %q", res.stdout)
	}

	body := decodeJSON(t, srv.find(t, "POST", "/api/user/change_password").Body)
	if body["old_password"] != "secret" || body["new_password"] != "better" || body["new_password_verification"] != "better" {
		t.Errorf("body = %v", body)
	}
}

func TestOwnerPassword_ConfirmNotCopied(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "password", "--old", "secret", "--new", "better")...)
	if res.err == nil || !strings.Contains(res.err.Error(), "--confirm") {
		t.Fatalf("err = %v, want confirmation required", res.err)
	}
	if len(srv.routes()) != 0 {
		t.Errorf("routes = %v, want none", srv.routes())
	}
}

func TestOwnerPassword_Mismatch(t *testing.T) {
	srv := newMockServer(t)

	res := run(t, srv, ownerArgs("owner", "password", "--old", "secret", "--new", "a", "--confirm", "b")...)
	if !errors.Is(res.err, smclient.ErrPasswordMismatch) {
		t.Fatalf("err = %v, want ErrPasswordMismatch", res.err)
	}
	for _, r := range srv.routes() {
		if r == "POST /api/user/change_password" {
			t.Error("mismatch must not reach the service")
		}
	}
}
