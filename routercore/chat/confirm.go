package chat

// ConfirmKind names which pending draft a session is waiting on. A session
// holds at most one pending confirmation at a time.
type ConfirmKind string

const (
	ConfirmNone            ConfirmKind = "none"
	ConfirmEmailSend       ConfirmKind = "email_send"
	ConfirmCalendarApprove ConfirmKind = "calendar_approve"
)
