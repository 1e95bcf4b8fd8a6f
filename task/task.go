// Package task implements the chore rotation and deadline engine: who is
// responsible for a recurring household task, and when it is next due.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Routine is the recurrence policy of a task.
type Routine string

const (
	// RoutineInterval tasks are due a fixed number of days after whenever
	// they were last completed.
	RoutineInterval Routine = "Interval"

	// RoutineSchedule tasks follow a fixed period grid anchored at the
	// task's first completion; completing early does not shift future due
	// dates.
	RoutineSchedule Routine = "Schedule"
)

// Valid reports whether r is a known routine.
func (r Routine) Valid() bool {
	return r == RoutineInterval || r == RoutineSchedule
}

// Validation faults (the caller's fault) and invariant faults (corrupted
// persisted state). HTTP handlers map these onto status codes with errors.Is.
var (
	// ErrUnknownTask is returned when no task exists with the given ID.
	ErrUnknownTask = errors.New("unknown task id")

	// ErrPersonNotInRota is returned when a designated starter or completer
	// is not a member of the task's participant list.
	ErrPersonNotInRota = errors.New("person is not in the task rota")

	// ErrPersonDoesNotExist is returned when a participant is not a known
	// user.
	ErrPersonDoesNotExist = errors.New("person does not exist")

	// ErrDuplicateParticipant is returned when the same person appears in a
	// rota twice.
	ErrDuplicateParticipant = errors.New("duplicate participant in rota")

	// ErrInvalidDuration is returned when a task duration is not positive.
	ErrInvalidDuration = errors.New("task duration must be positive")

	// ErrCompletionTooEarly is returned when a completion is dated before
	// the task's first recorded completion. Accepting one would move the
	// Schedule anchor and shift every future due date.
	ErrCompletionTooEarly = errors.New("completion date predates the task")

	// ErrEmptyRota is returned when a task is created with no participants.
	ErrEmptyRota = errors.New("task rota must not be empty")

	// ErrInvariantViolated indicates corrupted persisted state, such as a
	// recorded completion by someone who is not in the rota. It is reported
	// loudly so an operator can repair the data; it never crashes the
	// process.
	ErrInvariantViolated = errors.New("task state invariant violated")
)

// Deadline is a signed day-count describing how far in the future (upcoming)
// or past (overdue) a task's next due date is.
type Deadline struct {
	days    int
	overdue bool
}

// Upcoming returns a deadline n days in the future (n >= 0).
func Upcoming(n int) Deadline { return Deadline{days: n} }

// Overdue returns a deadline n days in the past (n >= 0).
func Overdue(n int) Deadline { return Deadline{days: n, overdue: true} }

// deadlineIn converts a signed day-count relative to today into a Deadline.
func deadlineIn(days int) Deadline {
	if days >= 0 {
		return Upcoming(days)
	}
	return Overdue(-days)
}

// Days returns the magnitude of the deadline in days.
func (d Deadline) Days() int { return d.days }

// IsOverdue reports whether the deadline lies in the past.
func (d Deadline) IsOverdue() bool { return d.overdue }

func (d Deadline) String() string {
	if d.overdue {
		return fmt.Sprintf("Overdue(%d)", d.days)
	}
	return fmt.Sprintf("Upcoming(%d)", d.days)
}

// MarshalJSON encodes the deadline as {"Upcoming": n} or {"Overdue": n},
// the wire format the frontend expects.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.overdue {
		return json.Marshal(map[string]int{"Overdue": d.days})
	}
	return json.Marshal(map[string]int{"Upcoming": d.days})
}

// UnmarshalJSON decodes the {"Upcoming": n} / {"Overdue": n} wire format.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	var tagged map[string]int
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if n, ok := tagged["Upcoming"]; ok {
		*d = Upcoming(n)
		return nil
	}
	if n, ok := tagged["Overdue"]; ok {
		*d = Overdue(n)
		return nil
	}
	return fmt.Errorf("deadline must be tagged Upcoming or Overdue")
}

// Task is the derived read view of a stored task: the stored fields plus the
// current assignee and deadline, computed at read time.
type Task struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Kind          Routine  `json:"kind"`
	AssignedTo    string   `json:"assigned_to"`
	Deadline      Deadline `json:"deadline"`
	LengthDays    int      `json:"length_days"`
	LastCompleted Date     `json:"last_completed"`
	Participants  []string `json:"participants"`
}

// NewTask describes a task to be created. Names maps language tags to
// localized display names. Participants is the rota in rotation order;
// StartsWith must be one of them and becomes the first assignee.
type NewTask struct {
	Names        map[string]string `json:"names"`
	Routine      Routine           `json:"routine"`
	DurationDays int               `json:"duration_days"`
	Participants []string          `json:"participants"`
	StartsOn     Date              `json:"starts_on"`
	StartsWith   string            `json:"starts_with"`
}

// Record is a stored task as returned by a Store: raw persisted state with no
// derived fields. FirstCompleted is the date of the synthesized completion
// inserted at creation time and anchors the Schedule period grid.
type Record struct {
	ID              int64
	Names           map[string]string
	Routine         Routine
	DurationDays    int
	Participants    []string
	FirstCompleted  Date
	LastCompleted   Date
	LastCompletedBy string
}

// InsertTask is the unit persisted when a task is created. The completion
// fields describe the pseudo-completion that seeds the rotation; a Store must
// persist the whole record atomically.
type InsertTask struct {
	Names        map[string]string
	Routine      Routine
	DurationDays int
	Participants []string
	CompletedOn  Date
	CompletedBy  string
}

// Store is the durable record of tasks, their rotas, and completion history.
type Store interface {
	// AddTask persists a new task as a single atomic unit and returns its
	// assigned ID. Participants must all be known users.
	AddTask(rec InsertTask) (int64, error)

	// InsertCompletion appends a completion event for the given task.
	InsertCompletion(taskID int64, on Date, by string) error

	// Records returns all stored tasks in creation order.
	Records() ([]*Record, error)

	// Record returns a single stored task, or ErrUnknownTask.
	Record(taskID int64) (*Record, error)
}
