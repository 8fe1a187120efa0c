package conversation

import "errors"

type RejectReason string

const (
	ReasonEmptyInput RejectReason = "empty_input"
	ReasonBusy       RejectReason = "busy"
	ReasonClosed     RejectReason = "closed"
)

// RejectedError reports a submit that was refused without touching state.
type RejectedError struct {
	Reason RejectReason
}

func (e *RejectedError) Error() string {
	return "submit rejected: " + string(e.Reason)
}

var (
	ErrEmptyInput = &RejectedError{Reason: ReasonEmptyInput}
	ErrBusy       = &RejectedError{Reason: ReasonBusy}
	ErrClosed     = &RejectedError{Reason: ReasonClosed}
)

// Reason extracts the rejection reason, or "" when err is not a rejection.
func Reason(err error) RejectReason {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}

	return ""
}
