package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidState      = errors.New("invalid report state")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateLine     = errors.New("action already added")
	ErrUnknownAction     = errors.New("unknown action")
	ErrLineNotFound      = errors.New("line not found")
	ErrDateOutsideWeek   = errors.New("date outside report week")
	ErrCommentRequired   = errors.New("comment is required")
	ErrSubmissionBlocked = errors.New("submission blocked")
)

// SubmitBlockedError lists every unmet submission condition, most important
// first (time gate ahead of missing lines).
type SubmitBlockedError struct {
	Reasons []string
}

func (e *SubmitBlockedError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrSubmissionBlocked.Error()
	}
	return strings.Join(e.Reasons, "; ")
}

func (e *SubmitBlockedError) Unwrap() error { return ErrSubmissionBlocked }

func duplicateLineError(actionName string) error {
	return fmt.Errorf("%s is already added: %w", actionName, ErrDuplicateLine)
}
