package task

import (
	"fmt"
	"strings"

	"github.com/MrJohz/homie/i18n"
)

// Service orchestrates task creation, listing, and completion recording. It
// validates inputs, derives assignees and deadlines from stored state, and
// persists changes through its Store.
type Service struct {
	store    Store
	clock    Clock
	fallback string // language used when no task name matches the request
}

// NewService creates a Service. fallbackLang is the language tag used for
// task names when nothing matches the caller's preference.
func NewService(store Store, clock Clock, fallbackLang string) *Service {
	return &Service{store: store, clock: clock, fallback: fallbackLang}
}

// AddTask validates and persists a new task and returns its ID.
//
// Creation synthesizes a completion dated StartsOn − DurationDays attributed
// to the rotation predecessor of StartsWith, so that the first live assignee
// is StartsWith and the Schedule period grid is anchored one whole period
// before StartsOn.
func (s *Service) AddTask(nt NewTask) (int64, error) {
	if nt.DurationDays <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDuration, nt.DurationDays)
	}
	if !nt.Routine.Valid() {
		return 0, fmt.Errorf("unknown routine %q", nt.Routine)
	}
	if len(nt.Participants) == 0 {
		return 0, ErrEmptyRota
	}
	seen := make(map[string]struct{}, len(nt.Participants))
	for _, p := range nt.Participants {
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p)
		}
		seen[key] = struct{}{}
	}
	if _, ok := seen[strings.ToLower(nt.StartsWith)]; !ok {
		return 0, fmt.Errorf("%w: starter %q", ErrPersonNotInRota, nt.StartsWith)
	}

	// The predecessor exists because StartsWith was just checked against
	// the rota.
	prev, err := previousAssignee(nt.Participants, nt.StartsWith)
	if err != nil {
		return 0, err
	}

	return s.store.AddTask(InsertTask{
		Names:        nt.Names,
		Routine:      nt.Routine,
		DurationDays: nt.DurationDays,
		Participants: nt.Participants,
		CompletedOn:  nt.StartsOn.AddDays(-nt.DurationDays),
		CompletedBy:  prev,
	})
}

// Tasks returns the derived view of every task in creation order. lang is the
// caller's Accept-Language preference, used to pick task names.
func (s *Service) Tasks(lang string) ([]*Task, error) {
	recs, err := s.store.Records()
	if err != nil {
		return nil, err
	}
	tasks := make([]*Task, 0, len(recs))
	for _, rec := range recs {
		t, err := s.view(rec, lang)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// TasksFor returns the tasks currently assigned to person, matched
// case-insensitively.
func (s *Service) TasksFor(person, lang string) ([]*Task, error) {
	all, err := s.Tasks(lang)
	if err != nil {
		return nil, err
	}
	assigned := make([]*Task, 0, len(all))
	for _, t := range all {
		if strings.EqualFold(t.AssignedTo, person) {
			assigned = append(assigned, t)
		}
	}
	return assigned, nil
}

// Task returns the derived view of a single task, or ErrUnknownTask.
func (s *Service) Task(taskID int64, lang string) (*Task, error) {
	rec, err := s.store.Record(taskID)
	if err != nil {
		return nil, err
	}
	return s.view(rec, lang)
}

// MarkTaskDone records that performedBy completed the task on the given date
// and returns the updated view. A zero onDate defaults to today. Completers
// who are not rota members are rejected with ErrPersonNotInRota, and dates
// before the task's first recorded completion with ErrCompletionTooEarly.
func (s *Service) MarkTaskDone(taskID int64, performedBy string, onDate Date, lang string) (*Task, error) {
	rec, err := s.store.Record(taskID)
	if err != nil {
		return nil, err
	}

	member := false
	for _, p := range rec.Participants {
		if strings.EqualFold(p, performedBy) {
			member = true
			break
		}
	}
	if !member {
		return nil, fmt.Errorf("%w: completer %q", ErrPersonNotInRota, performedBy)
	}

	if onDate.IsZero() {
		onDate = s.clock.Today()
	}
	if onDate.Before(rec.FirstCompleted) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrCompletionTooEarly, onDate, rec.FirstCompleted)
	}
	if err := s.store.InsertCompletion(taskID, onDate, performedBy); err != nil {
		return nil, err
	}
	return s.Task(taskID, lang)
}

// view derives the read model for one stored task.
func (s *Service) view(rec *Record, lang string) (*Task, error) {
	assignee, err := NextAssignee(rec.Participants, rec.LastCompletedBy)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", rec.ID, err)
	}
	return &Task{
		ID:            rec.ID,
		Name:          i18n.Pick(rec.Names, lang, s.fallback),
		Kind:          rec.Routine,
		AssignedTo:    assignee,
		Deadline:      NextDeadline(rec.Routine, rec.DurationDays, rec.FirstCompleted, rec.LastCompleted, s.clock.Today()),
		LengthDays:    rec.DurationDays,
		LastCompleted: rec.LastCompleted,
		Participants:  rec.Participants,
	}, nil
}
