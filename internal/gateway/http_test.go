package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/governance"
	"github.com/rahul/pathwise/internal/insights"
	"github.com/rahul/pathwise/internal/observability"
)

type taskEnvelope struct {
	Message          string    `json:"message"`
	Task             goal.Goal `json:"task"`
	SubtaskCompleted bool      `json:"subtaskCompleted"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, policy *governance.DefaultPolicyEngine) *apiClient {
	gin.SetMode(gin.TestMode)
	if policy == nil {
		policy = governance.NewDefaultPolicyEngine()
	}
	tr := newTestTracker(t, policy)
	auth := TokenAuthenticator{"alice-token": "alice", "bob-token": "bob"}
	srv := NewHTTPServer(tr, auth, policy, observability.NewWriterLogger(io.Discard))
	return &apiClient{t: t, handler: srv.Handler()}
}

func (a *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func (a *apiClient) create(token, title string) goal.Goal {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/tasks/create", token, map[string]string{"title": title})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var env taskEnvelope
	decode(a.t, w, &env)
	return env.Task
}

func TestHTTP_RequiresToken(t *testing.T) {
	api := newTestServer(t, nil)

	if w := api.do(http.MethodGet, "/api/tasks", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/api/tasks", "forged", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz: status %d", w.Code)
	}
}

func TestHTTP_CreateReturnsPlan(t *testing.T) {
	api := newTestServer(t, nil)

	w := api.do(http.MethodPost, "/api/tasks/create", "alice-token", map[string]string{"title": "Learn Python"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var raw map[string]any
	decode(t, w, &raw)
	task, ok := raw["task"].(map[string]any)
	if !ok {
		t.Fatalf("no task object in %s", w.Body.String())
	}
	for _, key := range []string{"_id", "title", "description", "userId", "subtasks", "completed", "completedAt", "aiGenerated", "createdAt"} {
		if _, ok := task[key]; !ok {
			t.Errorf("task JSON missing %q", key)
		}
	}
	subtasks := task["subtasks"].([]any)
	if len(subtasks) != 5 {
		t.Fatalf("expected 5 subtasks, got %d", len(subtasks))
	}
	first := subtasks[0].(map[string]any)
	if first["title"] != "Research and Planning" || first["completed"] != false || first["completedAt"] != nil {
		t.Errorf("unexpected first subtask %v", first)
	}

	w = api.do(http.MethodPost, "/api/tasks/create", "alice-token", map[string]string{"title": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty title: status %d", w.Code)
	}
}

func TestHTTP_ToggleFlow(t *testing.T) {
	api := newTestServer(t, nil)
	g := api.create("alice-token", "Learn Go")

	var env taskEnvelope
	for _, st := range g.Steps {
		w := api.do(http.MethodPut, "/api/tasks/"+g.ID+"/subtask/"+st.ID+"/complete", "alice-token", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("toggle: status %d: %s", w.Code, w.Body.String())
		}
		decode(t, w, &env)
		if !env.SubtaskCompleted {
			t.Errorf("step %s should now be done", st.ID)
		}
	}
	if !env.Task.Completed || env.Task.CompletedAt == nil {
		t.Errorf("goal should be complete after all toggles: %+v", env.Task)
	}

	last := g.Steps[len(g.Steps)-1].ID
	w := api.do(http.MethodPut, "/api/tasks/"+g.ID+"/subtask/"+last+"/complete", "alice-token", nil)
	decode(t, w, &env)
	if env.SubtaskCompleted || env.Task.Completed || env.Task.CompletedAt != nil {
		t.Errorf("goal should reopen: %+v", env.Task)
	}

	w = api.do(http.MethodPut, "/api/tasks/"+g.ID+"/subtask/nope/complete", "alice-token", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown subtask: status %d", w.Code)
	}
}

func TestHTTP_ForeignGoalLooksMissing(t *testing.T) {
	api := newTestServer(t, nil)
	g := api.create("alice-token", "Private")

	foreign := api.do(http.MethodGet, "/api/tasks/"+g.ID, "bob-token", nil)
	missing := api.do(http.MethodGet, "/api/tasks/does-not-exist", "bob-token", nil)
	if foreign.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("statuses %d and %d, want 404", foreign.Code, missing.Code)
	}
	if foreign.Body.String() != missing.Body.String() {
		t.Errorf("foreign and missing bodies differ: %s vs %s", foreign.Body.String(), missing.Body.String())
	}

	if w := api.do(http.MethodDelete, "/api/tasks/"+g.ID, "bob-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("foreign delete: status %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/api/tasks/"+g.ID, "alice-token", nil); w.Code != http.StatusOK {
		t.Errorf("owner get: status %d", w.Code)
	}
}

func TestHTTP_EditDeleteAndStats(t *testing.T) {
	api := newTestServer(t, nil)
	g := api.create("alice-token", "Learn Go")
	api.create("alice-token", "Learn Rust")

	w := api.do(http.MethodPut, "/api/tasks/"+g.ID, "alice-token", map[string]string{"title": "Learn Go well", "description": "generics too"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit: status %d", w.Code)
	}
	var env taskEnvelope
	decode(t, w, &env)
	if env.Task.Title != "Learn Go well" || env.Task.Description != "generics too" {
		t.Errorf("unexpected edit %+v", env.Task)
	}

	if w := api.do(http.MethodPut, "/api/tasks/"+g.ID, "alice-token", map[string]string{"title": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty edit: status %d", w.Code)
	}

	api.do(http.MethodPut, "/api/tasks/"+g.ID+"/subtask/"+g.Steps[0].ID+"/complete", "alice-token", nil)

	w = api.do(http.MethodGet, "/api/tasks/stats/overview", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	var stats insights.Stats
	decode(t, w, &stats)
	want := insights.Stats{TotalTasks: 2, ActiveTasks: 2, TotalSubtasks: 10, CompletedSubtasks: 1, SubtaskCompletionRate: 10}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	w = api.do(http.MethodGet, "/api/tasks/"+g.ID+"/insights", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("insights: status %d", w.Code)
	}
	var in insights.Insights
	decode(t, w, &in)
	if in.StepsRemaining != 4 || in.NextStep == nil || in.NextStep.Title != "Learn Fundamentals" {
		t.Errorf("unexpected insights %+v", in)
	}

	if w := api.do(http.MethodDelete, "/api/tasks/"+g.ID, "alice-token", nil); w.Code != http.StatusOK {
		t.Errorf("delete: status %d", w.Code)
	}
	w = api.do(http.MethodGet, "/api/tasks", "alice-token", nil)
	var list []goal.Goal
	decode(t, w, &list)
	if len(list) != 1 || list[0].Title != "Learn Rust" {
		t.Errorf("unexpected list after delete: %+v", list)
	}
}

func TestHTTP_RateLimit(t *testing.T) {
	policy := governance.NewDefaultPolicyEngine()
	policy.RateLimit(2, time.Hour)
	api := newTestServer(t, policy)

	for i := 0; i < 2; i++ {
		if w := api.do(http.MethodGet, "/api/tasks", "alice-token", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	if w := api.do(http.MethodGet, "/api/tasks", "alice-token", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/api/tasks", "bob-token", nil); w.Code != http.StatusOK {
		t.Errorf("bob should not be throttled, got %d", w.Code)
	}
}

func TestHTTP_EmptyListIsArray(t *testing.T) {
	api := newTestServer(t, nil)
	w := api.do(http.MethodGet, "/api/tasks", "alice-token", nil)
	if w.Body.String() != "[]" {
		t.Errorf("expected [], got %s", w.Body.String())
	}
}
