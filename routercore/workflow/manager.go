// Package workflow contains the per-turn orchestrator: it owns the
// classification/dispatch sequence, the per-session confirmation state
// machine, and the outermost failure boundary. No exception from any
// internal component ever reaches the caller; every entry point returns
// a well-formed turn result.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
	"github.com/uniassist/supportcore/routercore/observability"
	"github.com/uniassist/supportcore/routercore/session"
	"github.com/uniassist/supportcore/routercore/specialist"
)

var tracer = otel.Tracer("supportcore/workflow")

// ===== Collaborator interfaces =====

// Classifier determines the task category for one inbound message.
// Failures are folded into the result, never returned.
type Classifier interface {
	Classify(ctx context.Context, message string, history []chat.ChatMessage) chat.TaskClassification
}

// Mailer delivers an approved support email.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// FileReader extracts text from an uploaded file for message
// enrichment. Failures come back as placeholder text, never an error.
type FileReader interface {
	Read(path string) string
}

// ===== Manager =====

// Manager orchestrates one turn end to end. It is constructed once per
// process and shared across request handlers; the session store and the
// workflow-state map are the only runtime-mutated shared structures.
type Manager struct {
	store      session.Store
	classifier Classifier
	registry   *specialist.Registry
	mailer     Mailer
	reader     FileReader
	logger     *zap.Logger

	mu     sync.Mutex
	states map[string]*sessionState
}

// NewManager wires the orchestrator. mailer and reader may be nil when
// the corresponding capability is disabled.
func NewManager(store session.Store, classifier Classifier, registry *specialist.Registry, mailer Mailer, reader FileReader, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:      store,
		classifier: classifier,
		registry:   registry,
		mailer:     mailer,
		reader:     reader,
		logger:     logger,
		states:     make(map[string]*sessionState),
	}
}

// ProcessMessage executes one turn:
//
//  1. append inbound message (best-effort)
//  2. read bounded history
//  3. pending confirmation short-circuits classification and dispatch
//  4. classify
//  5. dispatch, storing a confirmable draft if one is produced
//  6. append outbound message (best-effort)
//  7. return the turn-result record
//
// Anything unhandled inside 1-6 is caught here, converted to an
// apologetic result, and recorded in history on a best-effort basis.
func (m *Manager) ProcessMessage(ctx context.Context, userID, message string, filePaths ...string) (result chat.TurnResult) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "workflow.turn",
		trace.WithAttributes(attribute.String("chat.user_id", userID)))

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("turn processing panicked",
				zap.String("user_id", userID),
				zap.Any("panic", r))
			result = m.failedTurn(ctx, userID, start)
		}
		span.SetAttributes(
			attribute.String("chat.category", string(result.Category)),
			attribute.Float64("chat.confidence", result.Confidence),
		)
		if result.Err {
			span.SetStatus(codes.Error, "turn failed")
		}
		span.End()
		observability.RecordTurn(string(result.Category), turnStatus(result.Err), result.ElapsedSeconds)
	}()

	if len(filePaths) > 0 {
		message = m.enrichWithFiles(message, filePaths)
	}

	if err := m.store.Append(ctx, userID, chat.NewChatMessage(userID, message, chat.RoleUser)); err != nil {
		level := m.logger.Warn
		if !faults.Recoverable(err) {
			level = m.logger.Error
		}
		level("inbound history append failed",
			zap.String("user_id", userID),
			zap.String("fault_kind", string(faults.Classify(err))),
			zap.Error(err))
	}

	history := m.store.Read(ctx, userID)

	var response string
	var classification chat.TaskClassification

	if st, pending := m.pendingState(userID); pending {
		response = m.resolveConfirmation(ctx, userID, st, message)
		classification = confirmationClassification(st.kind)
	} else {
		classification = m.classifier.Classify(ctx, message, history)

		out := m.registry.Dispatch(ctx, classification.Category, message, history)
		response = out.Text
		if out.Confirm != chat.ConfirmNone {
			m.setPending(userID, out.Confirm, out.Draft)
		}

		if classification.Confidence < 0.6 {
			response += lowConfidenceCaveat(classification.Confidence)
		}
	}

	if err := m.store.Append(ctx, userID, chat.NewChatMessage(userID, response, chat.RoleAssistant)); err != nil {
		m.logger.Warn("outbound history append failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return chat.TurnResult{
		Response:       response,
		Category:       classification.Category,
		Confidence:     classification.Confidence,
		ElapsedSeconds: time.Since(start).Seconds(),
		HistoryLength:  len(history),
		UserID:         userID,
		Timestamp:      time.Now().UTC(),
	}
}

// failedTurn builds the catch-all error result and tries to record it.
// A secondary failure while recording is swallowed.
func (m *Manager) failedTurn(ctx context.Context, userID string, start time.Time) chat.TurnResult {
	func() {
		defer func() { _ = recover() }()
		_ = m.store.Append(ctx, userID, chat.NewChatMessage(userID, faults.MsgTurnFailed, chat.RoleAssistant))
	}()

	return chat.TurnResult{
		Response:       faults.MsgTurnFailed,
		Category:       chat.CategoryGeneral,
		Confidence:     0,
		ElapsedSeconds: time.Since(start).Seconds(),
		UserID:         userID,
		Timestamp:      time.Now().UTC(),
		Err:            true,
	}
}

func turnStatus(failed bool) string {
	if failed {
		return "error"
	}
	return "success"
}

// confirmationClassification labels a confirmation turn with the
// category of its pending draft. Confirmation replies are never
// reclassified, so confidence is fixed.
func confirmationClassification(kind chat.ConfirmKind) chat.TaskClassification {
	category := chat.CategoryGeneral
	switch kind {
	case chat.ConfirmEmailSend:
		category = chat.CategoryTicket
	case chat.ConfirmCalendarApprove:
		category = chat.CategoryCalendar
	}
	return chat.TaskClassification{
		Category:   category,
		Confidence: 1.0,
		Rationale:  "xác nhận hành động đang chờ",
	}
}

func lowConfidenceCaveat(confidence float64) string {
	return fmt.Sprintf("\n\nLưu ý: Tôi không hoàn toàn chắc chắn về phân loại này "+
		"(độ tin cậy: %.0f%%). Nếu phản hồi không đúng, vui lòng mô tả rõ hơn yêu cầu của bạn.",
		confidence*100)
}

// ===== Confirmation resolution =====

func (m *Manager) resolveConfirmation(ctx context.Context, userID string, st sessionState, input string) string {
	action := resolveAction(input)
	if action == actionUnmatched || !action.appliesTo(st.kind) {
		observability.RecordConfirmation(string(st.kind), "unmatched")
		return msgUnrecognizedReply
	}
	observability.RecordConfirmation(string(st.kind), string(action))

	m.logger.Info("confirmation resolved",
		zap.String("user_id", userID),
		zap.String("kind", string(st.kind)),
		zap.String("action", string(action)))

	switch st.kind {
	case chat.ConfirmEmailSend:
		return m.resolveEmailConfirmation(ctx, userID, st, action)
	case chat.ConfirmCalendarApprove:
		return m.resolveCalendarConfirmation(userID, st, action)
	}

	m.clearPending(userID)
	return msgUnrecognizedReply
}

func (m *Manager) resolveEmailConfirmation(ctx context.Context, userID string, st sessionState, action confirmAction) string {
	switch action {
	case actionApprove, actionSendEmail:
		m.clearPending(userID)
		draft, ok := st.draft.(*chat.EmailDraft)
		if !ok || m.mailer == nil {
			return "Có lỗi xảy ra khi gửi email: chức năng gửi email hiện không khả dụng. " +
				"Vui lòng liên hệ trực tiếp với phòng ban."
		}
		if err := m.mailer.Send(ctx, draft.Recipient, draft.Subject, draft.Body); err != nil {
			m.logger.Warn("email send failed",
				zap.String("user_id", userID),
				zap.String("recipient", draft.Recipient),
				zap.Error(err))
			return "Có lỗi xảy ra khi gửi email. " +
				"Vui lòng thử lại sau hoặc liên hệ trực tiếp với phòng ban."
		}
		return fmt.Sprintf("Email đã được gửi thành công đến %s.\n"+
			"Bạn sẽ nhận được phản hồi qua email trong thời gian sớm nhất.", draft.Recipient)

	case actionEdit:
		m.clearPending(userID)
		return "Vui lòng mô tả lại nội dung email mà bạn muốn gửi."

	case actionCancel:
		m.clearPending(userID)
		return "Đã hủy gửi email. Có gì khác tôi có thể giúp bạn?"
	}
	return msgUnrecognizedReply
}

func (m *Manager) resolveCalendarConfirmation(userID string, st sessionState, action confirmAction) string {
	plan, _ := st.draft.(*chat.CalendarPlan)

	switch action {
	case actionApprove:
		m.clearPending(userID)
		if plan == nil {
			return "Lịch trình đã được phê duyệt!"
		}
		return "Lịch trình đã được phê duyệt! File CSV dưới đây đã sẵn sàng để import.\n\n" + plan.CSV

	case actionGoogleCalendar:
		// Hand out the import code without resetting the pending state;
		// the user still has to approve or cancel the plan.
		if plan == nil {
			return msgUnrecognizedReply
		}
		return "GOOGLE CALENDAR CODE\n\n```python\n" + plan.ImportScript + "\n```\n\n" + googleCalendarInstructions

	case actionEdit:
		m.clearPending(userID)
		return "Vui lòng cho biết bạn muốn chỉnh sửa gì trong lịch trình."

	case actionCancel:
		m.clearPending(userID)
		return "Đã hủy lịch trình. Có gì khác tôi có thể giúp bạn?"
	}
	return msgUnrecognizedReply
}

const googleCalendarInstructions = `HƯỚNG DẪN SETUP GOOGLE CALENDAR API

1. Truy cập https://console.cloud.google.com/ và tạo project, bật Google Calendar API.
2. Tạo OAuth 2.0 Client ID (Desktop Application), tải file JSON về và đổi tên thành credentials.json.
3. Cài thư viện: pip install google-auth google-auth-oauthlib google-api-python-client
4. Đặt credentials.json cùng thư mục với code và chạy script, authorize lần đầu qua browser.`

// ===== State map =====

func (m *Manager) pendingState(userID string) (sessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok || !st.pending {
		return sessionState{}, false
	}
	return *st, true
}

func (m *Manager) setPending(userID string, kind chat.ConfirmKind, draft any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = &sessionState{pending: true, kind: kind, draft: draft}
}

func (m *Manager) clearPending(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// PendingConfirmation reports the session's pending draft kind, if any.
func (m *Manager) PendingConfirmation(userID string) (chat.ConfirmKind, bool) {
	st, ok := m.pendingState(userID)
	if !ok {
		return chat.ConfirmNone, false
	}
	return st.kind, true
}

// ===== Session operations =====

// History returns the user's bounded history, oldest first.
func (m *Manager) History(ctx context.Context, userID string) []chat.ChatMessage {
	return m.store.Read(ctx, userID)
}

// Stats summarizes the user's retained history.
func (m *Manager) Stats(ctx context.Context, userID string) session.Stats {
	return session.ComputeStats(userID, m.store.Read(ctx, userID))
}

// Reset clears the user's history and any pending confirmation.
func (m *Manager) Reset(ctx context.Context, userID string) bool {
	m.clearPending(userID)
	return m.store.Clear(ctx, userID)
}

// ===== File enrichment =====

func (m *Manager) enrichWithFiles(message string, paths []string) string {
	if m.reader == nil {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	for _, p := range paths {
		fmt.Fprintf(&b, "\n\n[Nội dung file %s]\n", filepath.Base(p))
		b.WriteString(m.reader.Read(p))
	}
	return b.String()
}
