package task

import (
	"fmt"
	"strings"
)

// NextAssignee returns the participant responsible for a task after
// lastCompletedBy: the element following it in rotation order, wrapping back
// to the start of the list. A single-participant rota always returns that
// participant. Participant comparison is case-insensitive.
//
// A completer that is not in the rota violates the stored-state invariant and
// is reported as an error wrapping ErrInvariantViolated; it is never treated
// as routine control flow.
func NextAssignee(participants []string, lastCompletedBy string) (string, error) {
	for i, person := range participants {
		if strings.EqualFold(person, lastCompletedBy) {
			if i+1 < len(participants) {
				return participants[i+1], nil
			}
			return participants[0], nil
		}
	}
	return "", fmt.Errorf("%w: completer %q is not in the rota", ErrInvariantViolated, lastCompletedBy)
}

// previousAssignee returns the rotation predecessor of person: the participant
// whose completion would make person the next assignee. Used at creation time
// to attribute the synthesized first completion.
func previousAssignee(participants []string, person string) (string, error) {
	reversed := make([]string, len(participants))
	for i, p := range participants {
		reversed[len(participants)-1-i] = p
	}
	return NextAssignee(reversed, person)
}
