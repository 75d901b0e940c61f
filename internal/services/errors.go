package services

import "errors"

// Machine-checkable status tokens returned by the HTTP surface.
const (
	StatusOK                  = "ok"
	StatusSaved               = "saved"
	StatusSectionSaved        = "section_saved"
	StatusCompleted           = "completed"
	StatusNotYetOpen          = "not_yet_open"
	StatusWindowExpired       = "window_expired"
	StatusMaxAttemptsExceeded = "max_attempts_exceeded"
	StatusOutOfOrder          = "out_of_order"
	StatusAlreadySubmitted    = "already_submitted"
	StatusScorePending        = "score_pending"
)

var (
	// Not-found conditions
	ErrTestNotFound       = errors.New("test not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrAssignmentNotFound = errors.New("no assignment for this candidate and test")
	ErrSessionNotFound    = errors.New("no active session found")
	ErrReportNotFound     = errors.New("score report not found")

	// Window and quota
	ErrNotYetOpen        = errors.New("test window has not opened yet")
	ErrWindowClosed      = errors.New("test window has closed")
	ErrAttemptsExhausted = errors.New("maximum attempts reached")

	// Session state machine
	ErrOutOfOrderSection = errors.New("section cannot be submitted now")
	ErrAlreadySubmitted  = errors.New("section already completed")
	ErrSessionClosed     = errors.New("session already completed")
	ErrNoCurrentSection  = errors.New("session has no current section")

	// Request and storage
	ErrValidationFailed = errors.New("validation failed")
	ErrStorageConflict  = errors.New("storage conflict")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrCandidateNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

func IsWindowError(err error) bool {
	return errors.Is(err, ErrNotYetOpen) || errors.Is(err, ErrWindowClosed)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptsExhausted) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrStorageConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// StatusToken maps a service error to the token clients branch on.
// Unmapped errors report as internal failures at the handler boundary.
func StatusToken(err error) string {
	switch {
	case errors.Is(err, ErrNotYetOpen):
		return StatusNotYetOpen
	case errors.Is(err, ErrWindowClosed):
		return StatusWindowExpired
	case errors.Is(err, ErrAttemptsExhausted):
		return StatusMaxAttemptsExceeded
	case errors.Is(err, ErrOutOfOrderSection):
		return StatusOutOfOrder
	case errors.Is(err, ErrAlreadySubmitted):
		return StatusAlreadySubmitted
	case errors.Is(err, ErrSessionClosed):
		return StatusCompleted
	default:
		return ""
	}
}
