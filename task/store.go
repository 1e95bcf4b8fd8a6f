package task

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	routine       TEXT NOT NULL,
	duration_days INTEGER NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_names (
	task_id  INTEGER NOT NULL REFERENCES tasks(id),
	language TEXT NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (task_id, language)
);

CREATE TABLE IF NOT EXISTS task_participants (
	task_id  INTEGER NOT NULL REFERENCES tasks(id),
	position INTEGER NOT NULL,
	username TEXT NOT NULL,
	PRIMARY KEY (task_id, position)
);

CREATE TABLE IF NOT EXISTS task_completions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id      INTEGER NOT NULL REFERENCES tasks(id),
	completed_on TEXT NOT NULL,
	completed_by TEXT NOT NULL
);
`

// SQLiteStore persists tasks in a SQLite database shared with the auth
// store. Participant links are validated against the users table, so the
// auth schema must be installed on the same handle.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore ensures the task tables exist on db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create task schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// AddTask inserts the task row, its localized names, its ordered participant
// links, and the seeding completion in one transaction. An unknown
// participant aborts the whole unit with ErrPersonDoesNotExist.
func (s *SQLiteStore) AddTask(rec InsertTask) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin add task: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(
		`INSERT INTO tasks (routine, duration_days) VALUES (?, ?)`,
		string(rec.Routine), rec.DurationDays,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	taskID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for lang, name := range rec.Names {
		if _, err := tx.Exec(
			`INSERT INTO task_names (task_id, language, name) VALUES (?, ?, ?)`,
			taskID, lang, name,
		); err != nil {
			return 0, fmt.Errorf("insert task name: %w", err)
		}
	}

	for i, person := range rec.Participants {
		// Resolves the participant against the users table; zero rows
		// means no such user.
		res, err := tx.Exec(
			`INSERT INTO task_participants (task_id, position, username)
			 SELECT ?, ?, username FROM users WHERE username = ? COLLATE NOCASE`,
			taskID, i, person,
		)
		if err != nil {
			return 0, fmt.Errorf("insert participant: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: %q", ErrPersonDoesNotExist, person)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO task_completions (task_id, completed_on, completed_by) VALUES (?, ?, ?)`,
		taskID, rec.CompletedOn, rec.CompletedBy,
	); err != nil {
		return 0, fmt.Errorf("insert first completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add task: %w", err)
	}
	return taskID, nil
}

// InsertCompletion appends a completion event for the given task.
func (s *SQLiteStore) InsertCompletion(taskID int64, on Date, by string) error {
	if _, err := s.db.Exec(
		`INSERT INTO task_completions (task_id, completed_on, completed_by) VALUES (?, ?, ?)`,
		taskID, on, by,
	); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

// Records returns all stored tasks in creation order.
func (s *SQLiteStore) Records() ([]*Record, error) {
	return s.records(nil)
}

// Record returns a single stored task, or ErrUnknownTask.
func (s *SQLiteStore) Record(taskID int64) (*Record, error) {
	recs, err := s.records(&taskID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTask, taskID)
	}
	return recs[0], nil
}

// records loads task rows plus their names, rotas, and completion summary,
// optionally filtered to one task.
func (s *SQLiteStore) records(only *int64) ([]*Record, error) {
	where, args := "", []any{}
	if only != nil {
		where = " WHERE id = ?"
		args = append(args, *only)
	}

	rows, err := s.db.Query(`SELECT id, routine, duration_days FROM tasks`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	byID := make(map[int64]*Record)
	for rows.Next() {
		rec := &Record{Names: make(map[string]string)}
		var routine string
		if err := rows.Scan(&rec.ID, &routine, &rec.DurationDays); err != nil {
			return nil, err
		}
		rec.Routine = Routine(routine)
		recs = append(recs, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	where, args = "", nil
	if only != nil {
		where = " WHERE task_id = ?"
		args = append(args, *only)
	}

	names, err := s.db.Query(`SELECT task_id, language, name FROM task_names`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query task names: %w", err)
	}
	defer names.Close()
	for names.Next() {
		var id int64
		var lang, name string
		if err := names.Scan(&id, &lang, &name); err != nil {
			return nil, err
		}
		if rec := byID[id]; rec != nil {
			rec.Names[lang] = name
		}
	}
	if err := names.Err(); err != nil {
		return nil, err
	}

	parts, err := s.db.Query(`SELECT task_id, username FROM task_participants`+where+` ORDER BY task_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer parts.Close()
	for parts.Next() {
		var id int64
		var username string
		if err := parts.Scan(&id, &username); err != nil {
			return nil, err
		}
		if rec := byID[id]; rec != nil {
			rec.Participants = append(rec.Participants, username)
		}
	}
	if err := parts.Err(); err != nil {
		return nil, err
	}

	// Ordered by date then insertion, so the first row seen is the anchor
	// completion and the final row is the most recent one.
	comps, err := s.db.Query(`SELECT task_id, completed_on, completed_by FROM task_completions`+where+` ORDER BY task_id, completed_on, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer comps.Close()
	for comps.Next() {
		var id int64
		var on Date
		var by string
		if err := comps.Scan(&id, &on, &by); err != nil {
			return nil, err
		}
		rec := byID[id]
		if rec == nil {
			continue
		}
		if rec.FirstCompleted.IsZero() {
			rec.FirstCompleted = on
		}
		rec.LastCompleted = on
		rec.LastCompletedBy = by
	}
	if err := comps.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
