package task

// NextDeadline computes how many days remain, or are overdue, until a task is
// next due. anchor is the date of the task's first recorded completion (the
// pseudo-completion synthesized at creation) and is only consulted for
// Schedule tasks.
//
// Interval tasks are due durationDays after the last completion, with no
// fixed grid.
//
// Schedule tasks are due on a fixed period grid of length durationDays
// anchored at anchor. The completion containing lastCompleted satisfies its
// whole period, so re-recording a completion inside an already-satisfied
// period leaves the deadline unchanged, and skipped periods are caught up one
// period per completion rather than jumping to today.
func NextDeadline(routine Routine, durationDays int, anchor, lastCompleted, today Date) Deadline {
	switch routine {
	case RoutineSchedule:
		// Period index containing the last completion, then the start of
		// the period after it. The grid extends backwards from the anchor
		// too, so the division must floor rather than truncate.
		k := floorDiv(anchor.DaysUntil(lastCompleted), durationDays)
		boundary := anchor.AddDays((k + 1) * durationDays)
		return deadlineIn(today.DaysUntil(boundary.AddDays(durationDays)))
	default:
		return deadlineIn(today.DaysUntil(lastCompleted.AddDays(durationDays)))
	}
}

// floorDiv divides rounding toward negative infinity, unlike Go's
// truncating integer division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
