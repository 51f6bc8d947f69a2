package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrBlockedParticipant   = fmt.Errorf("participant is blocked in this conversation")
	ErrNoActiveConversation = fmt.Errorf("no conversation is selected")
	ErrEmptyMessage         = fmt.Errorf("message has no content and no attachments")
	ErrUnknownHandle        = fmt.Errorf("unknown attachment handle")
	ErrHandleRevoked        = fmt.Errorf("attachment handle already revoked")
	ErrNothingToRetry       = fmt.Errorf("no failed send to retry")
)

// ValidationError is recovered locally: the message stays in compose state,
// the user is notified and the send is not attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// TransportError covers send and history-fetch failures. It is surfaced as
// a transient notification while the compose state is preserved for retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SubscriptionError is a failed presence join. Non-fatal: the roster stays
// empty and the join is retried on the next conversation selection.
type SubscriptionError struct {
	Conversation string
	Err          error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("presence subscription for %s: %v", e.Conversation, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
