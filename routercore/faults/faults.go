// Package faults centralizes the error taxonomy for the task router.
//
// Every component boundary (session store, classifier, specialist dispatch,
// orchestrator) uses the same classification to decide degrade behavior, so
// retry/fallback policy is defined once instead of per handler.
//
// Kinds:
//
//	TRANSIENT: backend temporarily unreachable (memory store, vector lookup,
//	           web search, email transport) - degrade for this turn only
//	UNAVAILABLE: a specialist's backing resource failed at startup - fall
//	           back to the general handler
//	CLASSIFICATION: the text model errored or produced unusable output -
//	           low-confidence general classification
//	INTERNAL: anything unexpected - caught at the orchestrator boundary
package faults

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies a failure for degrade-policy purposes.
type Kind string

const (
	KindTransient      Kind = "transient"
	KindUnavailable    Kind = "unavailable"
	KindClassification Kind = "classification"
	KindInternal       Kind = "internal"
)

// Sentinel errors for the fixed failure categories. Components wrap these
// with %w so Classify can recognize them regardless of message text.
var (
	ErrBackendDown        = errors.New("backend unavailable")
	ErrSpecialistDisabled = errors.New("specialist unavailable")
	ErrModelFailure       = errors.New("text model failure")
)

// Classify maps an error to its Kind. Timeouts and cancellations count as
// transient: a slow backend is treated the same as a down backend.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSpecialistDisabled):
		return KindUnavailable
	case errors.Is(err, ErrModelFailure):
		return KindClassification
	case errors.Is(err, ErrBackendDown),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	return KindInternal
}

// Recoverable reports whether the turn can continue in degraded mode.
// Only internal faults escalate to the orchestrator's outermost handler.
func Recoverable(err error) bool {
	return Classify(err) != KindInternal
}

// =============================================================================
// User-Facing Degradation Messages
// =============================================================================

// User-visible failures are always natural-language apologies with an
// actionable suggestion, never raw errors or stack traces.
const (
	// MsgSpecialistFailed is returned when a specialist call fails mid-turn.
	MsgSpecialistFailed = "Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu của bạn. " +
		"Vui lòng thử lại hoặc liên hệ phòng ban liên quan nếu vấn đề tiếp tục."

	// MsgTurnFailed is the orchestrator's outermost catch-all response.
	MsgTurnFailed = "Xin lỗi, đã có lỗi xảy ra khi xử lý tin nhắn của bạn. " +
		"Vui lòng thử lại với cách diễn đạt khác hoặc liên hệ support."

	// MsgCapabilities is the canned capability summary used when even the
	// general handler cannot reach its model.
	MsgCapabilities = "Xin chào! Tôi là trợ lý ảo hỗ trợ sinh viên. Tôi có thể giúp bạn " +
		"trả lời câu hỏi về quy định trường, tìm kiếm thông tin, quản lý lịch học " +
		"và gửi ticket hỗ trợ. Bạn cần tôi giúp gì?"
)

// SpecialistApology renders the boundary apology for a failing specialist,
// keeping the category visible for follow-up without leaking the raw error.
func SpecialistApology(specialist string) string {
	return fmt.Sprintf("Xin lỗi, chức năng %s hiện đang gặp sự cố. "+
		"Vui lòng thử lại sau hoặc đặt câu hỏi theo cách khác.", specialist)
}

// Redact trims an internal error to a single line suitable for a rationale
// field. It never returns request payloads or multi-line traces.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
