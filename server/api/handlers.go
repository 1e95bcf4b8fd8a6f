// Package api implements the REST handlers for the task rota.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MrJohz/homie/task"
)

// Handlers bundles all REST API handler dependencies.
type Handlers struct {
	Tasks   *task.Service
	Logger  *slog.Logger
	Version string
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("POST /api/tasks", h.createTask)
	mux.HandleFunc("GET /api/tasks/{id}", h.getTask)
	mux.HandleFunc("GET /api/tasks/people/{person}", h.tasksForPerson)
	mux.HandleFunc("POST /api/tasks/actions/mark_task_done/{id}", h.markTaskDone)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeTaskError maps engine faults onto status codes: validation faults are
// the caller's fault (400), storage and invariant faults are ours (500) and
// are logged with detail rather than leaked to the caller.
func (h *Handlers) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrUnknownTask),
		errors.Is(err, task.ErrPersonNotInRota),
		errors.Is(err, task.ErrPersonDoesNotExist),
		errors.Is(err, task.ErrDuplicateParticipant),
		errors.Is(err, task.ErrInvalidDuration),
		errors.Is(err, task.ErrCompletionTooEarly),
		errors.Is(err, task.ErrEmptyRota):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, task.ErrInvariantViolated):
		h.Logger.Error("corrupted task state", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		h.Logger.Error("task storage failure", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// lang extracts the caller's language preference.
func lang(r *http.Request) string {
	return r.Header.Get("Accept-Language")
}

// --- Task handlers ---

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.Tasks(lang(r))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var nt task.NewTask
	if err := json.NewDecoder(r.Body).Decode(&nt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id, err := h.Tasks.AddTask(nt)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	t, err := h.Tasks.Task(id, lang(r))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	t, err := h.Tasks.Task(id, lang(r))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) tasksForPerson(w http.ResponseWriter, r *http.Request) {
	person := r.PathValue("person")
	tasks, err := h.Tasks.TasksFor(person, lang(r))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) markTaskDone(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	q := r.URL.Query()
	by := q.Get("by")
	if by == "" {
		writeError(w, http.StatusBadRequest, "missing 'by' query parameter")
		return
	}

	var on task.Date
	if raw := q.Get("on"); raw != "" {
		on, err = task.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'on' date: "+err.Error())
			return
		}
	}

	t, err := h.Tasks.MarkTaskDone(id, by, on, lang(r))
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- Status ---

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
	})
}

// StatusHandler returns the status handler function for external registration.
func (h *Handlers) StatusHandler() http.HandlerFunc {
	return h.status
}
