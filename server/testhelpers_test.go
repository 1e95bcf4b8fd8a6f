package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MrJohz/homie/auth"
	"github.com/MrJohz/homie/config"
	"github.com/MrJohz/homie/db"
	"github.com/MrJohz/homie/task"
)

// fixedClock satisfies task.Clock for tests.
type fixedClock struct{ d task.Date }

func (c fixedClock) Today() task.Date { return c.d }

// newTestServer builds a Server backed by a throwaway database with the
// users arthur and bob (password "secret") already registered. Routes are
// registered; drive requests through s.mux.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	f, err := os.CreateTemp("", "homie-server-*.db")
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
		if err := authStore.CreateUser(u, "secret"); err != nil {
			t.Fatalf("create user %s: %v", u, err)
		}
	}

	taskStore, err := task.NewSQLiteStore(dbh)
	if err != nil {
		t.Fatalf("task.NewSQLiteStore: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Server.Addr = ":0"
	s := New(*cfg, "test", nil)
	s.SetAuthStore(authStore)
	s.SetTaskService(task.NewService(
		taskStore,
		fixedClock{d: task.NewDate(2020, time.January, 14)},
		"en",
	))
	s.registerRoutes()
	return s
}

// loginAs logs the given user in through the API and returns the session
// token.
func loginAs(t *testing.T, s *Server, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp["token"]
}
