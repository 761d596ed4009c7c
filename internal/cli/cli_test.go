package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"taskdeck/internal/model"
)

// fakeServer plays both the backend (under /api) and the agent.
type fakeServer struct {
	mu      sync.Mutex
	tasks   map[int]model.Task
	nextID  int
	posts   []map[string]any
	agent   map[string]any
	healthy bool
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{tasks: map[int]model.Task{}, nextID: 1, healthy: true}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fs *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch {
	case r.URL.Path == "/health":
		if !fs.healthy {
			fs.reply(w, http.StatusServiceUnavailable, map[string]any{"detail": "down"})
			return
		}
		fs.reply(w, http.StatusOK, map[string]any{"status": "healthy"})
		return
	case r.URL.Path == "/chatkit/api":
		fs.reply(w, http.StatusOK, fs.agent)
		return
	case r.URL.Path == "/api/auth/token":
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "s3cret" {
			fs.reply(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect username or password"})
			return
		}
		fs.reply(w, http.StatusOK, map[string]any{"access_token": "tok-alice", "token_type": "bearer"})
		return
	}

	if r.Header.Get("Authorization") != "Bearer tok-alice" {
		fs.reply(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
		return
	}

	switch {
	case r.URL.Path == "/api/auth/me":
		fs.reply(w, http.StatusOK, model.User{ID: 7, Username: "alice", Email: "alice@example.com", IsActive: true})
	case r.URL.Path == "/api/tasks" && r.Method == http.MethodGet:
		out := make([]model.Task, 0, len(fs.tasks))
		for i := 1; i < fs.nextID; i++ {
			if t, ok := fs.tasks[i]; ok {
				out = append(out, t)
			}
		}
		fs.reply(w, http.StatusOK, out)
	case r.URL.Path == "/api/tasks" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fs.posts = append(fs.posts, body)
		t := model.Task{
			ID:       fs.nextID,
			Title:    body["title"].(string),
			Status:   model.StatusPending,
			Priority: model.Priority(body["priority"].(string)),
			OwnerID:  int(body["owner_id"].(float64)),
		}
		if due, ok := body["due_date"].(string); ok {
			ts, _ := model.ParseTimestamp(due)
			t.DueDate = &ts
		}
		if cat, ok := body["category"].(string); ok {
			t.Category = &cat
		}
		fs.tasks[t.ID] = t
		fs.nextID++
		fs.reply(w, http.StatusCreated, t)
	case strings.HasPrefix(r.URL.Path, "/api/tasks/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/tasks/"))
		t, ok := fs.tasks[id]
		if !ok {
			fs.reply(w, http.StatusNotFound, map[string]any{"detail": "Task not found"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			fs.reply(w, http.StatusOK, t)
		case http.MethodPut:
			var patch model.TaskPatch
			_ = json.NewDecoder(r.Body).Decode(&patch)
			if patch.Status != nil {
				t.Status = *patch.Status
			}
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			fs.tasks[id] = t
			fs.reply(w, http.StatusOK, t)
		case http.MethodDelete:
			delete(fs.tasks, id)
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		fs.reply(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
}

func (fs *fakeServer) post(i int) map[string]any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.posts[i]
}

func (fs *fakeServer) postCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.posts)
}

func runCLI(t *testing.T, dir, url string, args ...string) (map[string]any, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--dir", dir, "--api-url", url, "--agent-url", url}, args...)
	err := Run(context.Background(), full, &stdout, &stderr)
	var env map[string]any
	if strings.HasPrefix(strings.TrimSpace(stdout.String()), "{") {
		if jerr := json.Unmarshal(stdout.Bytes(), &env); jerr != nil {
			t.Fatalf("stdout is not json: %v\n%s", jerr, stdout.String())
		}
	}
	if env == nil && err == nil && stdout.Len() > 0 {
		env = map[string]any{"raw": stdout.String()}
	}
	return env, stderr.String(), err
}

func mustRun(t *testing.T, dir, url string, args ...string) map[string]any {
	t.Helper()
	env, stderr, err := runCLI(t, dir, url, args...)
	if err != nil {
		t.Fatalf("taskdeck %v failed: %v\nstderr:\n%s", args, err, stderr)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env)
	}
	return m
}

func TestCLI_LoginAndTaskLifecycle(t *testing.T) {
	t.Parallel()

	fs, srv := newFakeServer(t)
	dir := t.TempDir()

	login := mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")
	if dataMap(t, login)["username"] != "alice" {
		t.Fatalf("unexpected login output: %#v", login)
	}

	created := mustRun(t, dir, srv.URL, "tasks", "create", "--title", "Buy milk", "--priority", "high", "--due", "2025-06-01", "--category", "errand")
	task := dataMap(t, created)
	if task["id"].(float64) != 1 || task["owner_id"].(float64) != 7 {
		t.Fatalf("unexpected created task: %#v", task)
	}
	post := fs.post(0)
	if post["status"] != "pending" || post["is_recurring"] != false || post["priority"] != "high" {
		t.Fatalf("unexpected create payload: %#v", post)
	}

	pending := mustRun(t, dir, srv.URL, "tasks", "list", "--filter", "pending")
	if xs := pending["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected one pending task, got %#v", pending)
	}

	done := mustRun(t, dir, srv.URL, "tasks", "complete", "1")
	if dataMap(t, done)["status"] != "completed" || dataMap(t, done)["completed_at"] == nil {
		t.Fatalf("expected completed task with completed_at, got %#v", done)
	}

	text := mustRun(t, dir, srv.URL, "--format", "text", "tasks", "list", "--filter", "completed")
	if raw, _ := text["raw"].(string); !strings.Contains(raw, "[x]") || !strings.Contains(raw, "Buy milk") {
		t.Fatalf("expected text table with completed task, got %#v", text)
	}

	mustRun(t, dir, srv.URL, "tasks", "delete", "1")
	if _, _, err := runCLI(t, dir, srv.URL, "tasks", "show", "1"); err == nil {
		t.Fatalf("expected show of deleted task to fail")
	}

	mustRun(t, dir, srv.URL, "logout")
	if _, stderr, err := runCLI(t, dir, srv.URL, "whoami"); err == nil || !strings.Contains(stderr, "not signed in") {
		t.Fatalf("expected whoami to fail after logout, err=%v stderr=%q", err, stderr)
	}
}

func TestCLI_RejectedLoginStoresNothing(t *testing.T) {
	t.Parallel()

	_, srv := newFakeServer(t)
	dir := t.TempDir()

	_, stderr, err := runCLI(t, dir, srv.URL, "login", "--username", "alice", "--password", "nope")
	if err == nil || !strings.Contains(stderr, "Incorrect username or password") {
		t.Fatalf("expected rejected login, err=%v stderr=%q", err, stderr)
	}
	if _, stderr, err := runCLI(t, dir, srv.URL, "tasks", "list"); err == nil || !strings.Contains(stderr, "auth_required") {
		t.Fatalf("expected auth error without a token, err=%v stderr=%q", err, stderr)
	}
}

func TestCLI_CreateValidatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	fs, srv := newFakeServer(t)
	dir := t.TempDir()
	mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")

	if _, _, err := runCLI(t, dir, srv.URL, "tasks", "create", "--title", "   "); err == nil {
		t.Fatalf("expected blank title to fail")
	}
	if _, _, err := runCLI(t, dir, srv.URL, "tasks", "create", "--title", "x", "--priority", "urgent"); err == nil {
		t.Fatalf("expected bad priority to fail")
	}
	if _, _, err := runCLI(t, dir, srv.URL, "tasks", "show", "abc"); err == nil {
		t.Fatalf("expected invalid id to fail")
	}
	if fs.postCount() != 0 {
		t.Fatalf("invalid input must not reach the backend")
	}
}

func TestCLI_ChatConfirmCreatesTaskOnce(t *testing.T) {
	t.Parallel()

	fs, srv := newFakeServer(t)
	fs.agent = map[string]any{
		"type":    "message",
		"content": "Shall I add this?",
		"done":    true,
		"action":  "preview",
		"task":    map[string]any{"title": "Buy milk", "priority": "high", "due_date": "2025-06-01", "category": "errand"},
	}
	dir := t.TempDir()
	mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")

	declined := mustRun(t, dir, srv.URL, "chat", "send", "--confirm", "no", "buy", "milk")
	if dataMap(t, declined)["preview"] == nil || fs.postCount() != 0 {
		t.Fatalf("declined preview must not create: %#v", declined)
	}

	out := mustRun(t, dir, srv.URL, "chat", "send", "--confirm", "yes", "buy milk tomorrow")
	data := dataMap(t, out)
	if data["agent"] != "available" {
		t.Fatalf("expected agent available, got %#v", data)
	}
	if fs.postCount() != 1 {
		t.Fatalf("expected exactly one create, got %d", fs.postCount())
	}
	post := fs.post(0)
	if post["title"] != "Buy milk" || post["priority"] != "high" || post["due_date"] != "2025-06-01" || post["category"] != "errand" || post["owner_id"].(float64) != 7 {
		t.Fatalf("unexpected create payload: %#v", post)
	}
	msgs := data["messages"].([]any)
	last := msgs[len(msgs)-1].(map[string]any)
	if last["kind"] != "confirmation" || !strings.Contains(last["content"].(string), "Task ID: 1") {
		t.Fatalf("expected confirmation message, got %#v", last)
	}
}

func TestCLI_ChatFallsBackWhenAgentDown(t *testing.T) {
	t.Parallel()

	fs, srv := newFakeServer(t)
	fs.healthy = false
	dir := t.TempDir()
	mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")

	out := mustRun(t, dir, srv.URL, "chat", "send", "hello")
	data := dataMap(t, out)
	if data["agent"] != "unavailable" {
		t.Fatalf("expected unavailable agent, got %#v", data)
	}
	msgs := data["messages"].([]any)
	if len(msgs) != 2 || msgs[1].(map[string]any)["sender"] != "ai" {
		t.Fatalf("expected user message plus local reply, got %#v", msgs)
	}
}

func TestCLI_ChatReportsRepliesAfterEviction(t *testing.T) {
	t.Parallel()

	fs, srv := newFakeServer(t)
	fs.healthy = false
	dir := t.TempDir()
	mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")

	// A one-message thread has already dropped the welcome and the user message.
	out := mustRun(t, dir, srv.URL, "--max-messages", "1", "chat", "send", "hello")
	msgs := dataMap(t, out)["messages"].([]any)
	if len(msgs) != 1 || msgs[0].(map[string]any)["sender"] != "ai" {
		t.Fatalf("expected the local reply to survive eviction, got %#v", msgs)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	t.Parallel()

	_, srv := newFakeServer(t)
	dir := t.TempDir()

	mustRun(t, dir, srv.URL, "config", "set", "timeout", "5s")
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml: %v", err)
	}
	show := mustRun(t, dir, srv.URL, "config", "show")
	if dataMap(t, show)["timeout"] != "5s" {
		t.Fatalf("expected timeout from config.yaml, got %#v", show)
	}
	if _, _, err := runCLI(t, dir, srv.URL, "config", "set", "format", "edn"); err == nil {
		t.Fatalf("expected invalid format to be rejected")
	}
}

func TestCLI_CalendarMonthText(t *testing.T) {
	t.Parallel()

	_, srv := newFakeServer(t)
	dir := t.TempDir()
	mustRun(t, dir, srv.URL, "login", "--username", "alice", "--password", "s3cret")
	mustRun(t, dir, srv.URL, "tasks", "create", "--title", "Pay rent", "--due", "2025-05-01")

	out := mustRun(t, dir, srv.URL, "--format", "text", "calendar", "month", "--month", "2025-05")
	raw, _ := out["raw"].(string)
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) != 6 || !strings.HasPrefix(lines[0], "SUN") {
		t.Fatalf("expected header plus five weeks, got:\n%s", raw)
	}
	if !strings.Contains(lines[1], "01(1)") || !strings.Contains(lines[1], "[27]") {
		t.Fatalf("expected first week to hold the due task and April padding, got %q", lines[1])
	}
}
