package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MrJohz/homie/auth"
	"github.com/MrJohz/homie/db"
	"github.com/MrJohz/homie/server/api"
	"github.com/MrJohz/homie/task"
)

// fixedClock satisfies task.Clock for tests.
type fixedClock struct{ d task.Date }

func (c fixedClock) Today() task.Date { return c.d }

// newHandlers builds the handler set over a throwaway database with the
// users arthur and bob registered. Today is pinned to 2020-01-10.
func newHandlers(t *testing.T) (*api.Handlers, *http.ServeMux) {
	t.Helper()

	f, err := os.CreateTemp("", "homie-api-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	path := f.Name()
	t.Cleanup(func() { os.Remove(path) })

	dbh, err := db.Open(path)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	authStore, err := auth.NewStore(dbh)
	if err != nil {
		t.Fatalf("auth.NewStore: %v", err)
	}
	for _, u := range []string{"arthur", "bob"} {
		if err := authStore.CreateUser(u, ""); err != nil {
			t.Fatalf("create user %s: %v", u, err)
		}
	}

	store, err := task.NewSQLiteStore(dbh)
	if err != nil {
		t.Fatalf("task.NewSQLiteStore: %v", err)
	}
	svc := task.NewService(store, fixedClock{d: task.NewDate(2020, time.January, 10)}, "en")

	mux := http.NewServeMux()
	h := &api.Handlers{
		Tasks:   svc,
		Logger:  slog.Default(),
		Version: "test",
	}
	h.RegisterRoutes(mux)
	return h, mux
}

// createTask posts the standard two-person weekly task used across these
// tests and returns its decoded view.
func createTask(t *testing.T, mux *http.ServeMux) task.Task {
	t.Helper()

	body := `{
		"names": {"en": "Dishes", "de": "Abwasch"},
		"routine": "Interval",
		"duration_days": 7,
		"participants": ["arthur", "bob"],
		"starts_on": "2020-01-12",
		"starts_with": "arthur"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created task.Task
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return created
}

func TestListTasks_Empty(t *testing.T) {
	_, mux := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var tasks []task.Task
	if err := json.NewDecoder(rr.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tasks == nil {
		t.Error("expected empty array, not null")
	}
}

func TestCreateAndGetTask(t *testing.T) {
	_, mux := newHandlers(t)
	created := createTask(t, mux)

	if created.AssignedTo != "arthur" {
		t.Errorf("assigned_to = %q, want %q", created.AssignedTo, "arthur")
	}
	if created.LastCompleted.String() != "2020-01-05" {
		t.Errorf("last_completed = %v, want 2020-01-05", created.LastCompleted)
	}
	if created.Deadline != task.Upcoming(2) {
		t.Errorf("deadline = %v, want Upcoming(2)", created.Deadline)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got task.Task
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != created.ID || got.Name != "Dishes" {
		t.Errorf("got id=%d name=%q", got.ID, got.Name)
	}
}

func TestCreateTask_DeadlineWireFormat(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if !bytes.Contains(rr.Body.Bytes(), []byte(`"deadline":{"Upcoming":2}`)) {
		t.Errorf("deadline not in tagged wire format: %s", rr.Body.String())
	}
}

func TestCreateTask_ValidationFailure(t *testing.T) {
	_, mux := newHandlers(t)

	body := `{
		"names": {"en": "Dishes"},
		"routine": "Interval",
		"duration_days": 7,
		"participants": ["arthur", "arthur"],
		"starts_on": "2020-01-12",
		"starts_with": "arthur"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateTask_UnknownParticipant(t *testing.T) {
	_, mux := newHandlers(t)

	body := `{
		"names": {"en": "Dishes"},
		"routine": "Interval",
		"duration_days": 7,
		"participants": ["arthur", "zoe"],
		"starts_on": "2020-01-12",
		"starts_with": "arthur"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetTask_Unknown(t *testing.T) {
	_, mux := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/42", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestGetTask_BadID(t *testing.T) {
	_, mux := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestMarkTaskDone(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodPost,
		"/api/tasks/actions/mark_task_done/1?by=arthur&on=2020-01-10", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got task.Task
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AssignedTo != "bob" {
		t.Errorf("assigned_to = %q, want %q", got.AssignedTo, "bob")
	}
	if got.Deadline != task.Upcoming(7) {
		t.Errorf("deadline = %v, want Upcoming(7)", got.Deadline)
	}
}

func TestMarkTaskDone_MissingBy(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/actions/mark_task_done/1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestMarkTaskDone_BadDate(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodPost,
		"/api/tasks/actions/mark_task_done/1?by=arthur&on=yesterday", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestMarkTaskDone_NonMember(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodPost,
		"/api/tasks/actions/mark_task_done/1?by=zoe", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTasksForPerson(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	for _, tc := range []struct {
		person string
		want   int
	}{
		{"arthur", 1},
		{"ARTHUR", 1},
		{"bob", 0},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/people/"+tc.person, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.person, rr.Code)
		}
		var tasks []task.Task
		if err := json.NewDecoder(rr.Body).Decode(&tasks); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(tasks) != tc.want {
			t.Errorf("%s: got %d tasks, want %d", tc.person, len(tasks), tc.want)
		}
	}
}

func TestLocalizedTaskName(t *testing.T) {
	_, mux := newHandlers(t)
	createTask(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	req.Header.Set("Accept-Language", "de-AT, de;q=0.9")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var got task.Task
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Abwasch" {
		t.Errorf("name = %q, want %q", got.Name, "Abwasch")
	}
}
