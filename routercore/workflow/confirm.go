package workflow

import (
	"strings"

	"github.com/uniassist/supportcore/routercore/chat"
)

// ===== Confirmation actions =====

type confirmAction string

const (
	actionApprove        confirmAction = "approve"
	actionEdit           confirmAction = "edit"
	actionCancel         confirmAction = "cancel"
	actionSendEmail      confirmAction = "send_email"
	actionGoogleCalendar confirmAction = "google_calendar"
	actionUnmatched      confirmAction = "unmatched"
)

// Keyword sets are checked in a fixed order so an input matching several
// sets always resolves the same way.
var confirmationKeywords = []struct {
	action confirmAction
	words  []string
}{
	{actionApprove, []string{"ok", "đồng ý", "tôi đồng ý", "yes", "có", "được", "xác nhận"}},
	{actionEdit, []string{"sửa", "chỉnh sửa", "thay đổi", "edit", "modify"}},
	{actionCancel, []string{"hủy", "không", "thôi", "cancel", "no"}},
	{actionSendEmail, []string{"gửi", "send", "gửi email"}},
	{actionGoogleCalendar, []string{"google", "google calendar", "code"}},
}

// resolveAction matches a confirmation reply against the keyword sets,
// case-insensitively, by substring.
func resolveAction(input string) confirmAction {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, set := range confirmationKeywords {
		for _, word := range set.words {
			if strings.Contains(lower, word) {
				return set.action
			}
		}
	}
	return actionUnmatched
}

// appliesTo reports whether the action is meaningful for the pending
// confirmation kind. The google/code word set is calendar-only;
// send-words only make sense for a pending email.
func (a confirmAction) appliesTo(kind chat.ConfirmKind) bool {
	switch a {
	case actionApprove, actionEdit, actionCancel:
		return true
	case actionSendEmail:
		return kind == chat.ConfirmEmailSend
	case actionGoogleCalendar:
		return kind == chat.ConfirmCalendarApprove
	default:
		return false
	}
}

// ===== Per-session workflow state =====

// sessionState tracks a session's pending confirmation. A session holds
// at most one draft in flight; a new draft can only be stored after the
// state has passed back through idle.
type sessionState struct {
	pending bool
	kind    chat.ConfirmKind
	draft   any
}

const msgUnrecognizedReply = "Không hiểu phản hồi của bạn. " +
	"Vui lòng trả lời 'OK', 'SỬA', 'HỦY', hoặc các từ khóa tương tự."
