// Package chat defines the shared data model for the support task router:
// chat messages, task categories, classification results, the per-turn
// result record, and the draft artifacts that flow through confirmation.
//
// Everything here is plain data. Mutation rules:
//   - ChatMessage is immutable once created; the session store appends and
//     evicts, never edits.
//   - TaskClassification and TurnResult are transient, produced and consumed
//     within a single turn.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Roles and Messages
// =============================================================================

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoleFromString parses a role string.
func RoleFromString(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("invalid role '%s'. Must be one of: user, assistant", value)
	}
}

// ChatMessage is a single conversation turn as retained by the session store.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates an immutable message stamped with the current time.
func NewChatMessage(userID, content string, role Role) ChatMessage {
	return ChatMessage{
		ID:        "msg_" + uuid.New().String()[:16],
		UserID:    userID,
		Content:   content,
		Role:      role,
		Timestamp: time.Now().UTC(),
	}
}

// =============================================================================
// Task Categories
// =============================================================================

// Category is one of the five intents a message can be classified into.
type Category string

const (
	CategoryQNA      Category = "qna"
	CategorySearch   Category = "search"
	CategoryCalendar Category = "calendar"
	CategoryTicket   Category = "ticket"
	CategoryGeneral  Category = "general"
)

// CategoryPriority is the fixed tie-break order for classification scoring.
// Earlier wins. Ties must never depend on map iteration order.
var CategoryPriority = []Category{
	CategoryQNA,
	CategorySearch,
	CategoryCalendar,
	CategoryTicket,
	CategoryGeneral,
}

// CategoryFromString parses a category string.
func CategoryFromString(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "qna":
		return CategoryQNA, nil
	case "search":
		return CategorySearch, nil
	case "calendar":
		return CategoryCalendar, nil
	case "ticket":
		return CategoryTicket, nil
	case "general":
		return CategoryGeneral, nil
	default:
		return "", fmt.Errorf("invalid category '%s'. Must be one of: qna, search, calendar, ticket, general", value)
	}
}

// =============================================================================
// Classification Result
// =============================================================================

// TaskClassification is the outcome of classifying one inbound message.
type TaskClassification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // 0.0 - 1.0
	Rationale  string   `json:"rationale"`
}

// =============================================================================
// Turn Result
// =============================================================================

// TurnResult is the externally observable record returned for every turn.
// Its shape is the stable contract for any caller (CLI, web front-end);
// fields are only ever added, never renamed or removed.
type TurnResult struct {
	Response       string    `json:"response"`
	Category       Category  `json:"category"`
	Confidence     float64   `json:"confidence"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	HistoryLength  int       `json:"history_length"`
	UserID         string    `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
	Err            bool      `json:"error,omitempty"`
}

// =============================================================================
// Draft Artifacts
// =============================================================================

// EmailDraft is an unexecuted support-ticket email awaiting confirmation.
// It is either fully sent on approval or discarded on cancel, never partially
// applied.
type EmailDraft struct {
	Recipient string   `json:"recipient"`
	CC        []string `json:"cc,omitempty"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
}

// CalendarEvent is a single entry of a generated study calendar.
type CalendarEvent struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Location string    `json:"location,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// CalendarPlan is a generated calendar awaiting approval. CSV holds the
// rendered schedule; ImportScript holds the generated Google Calendar import
// snippet handed out on request while the plan is still pending.
type CalendarPlan struct {
	Summary      string          `json:"summary"`
	Events       []CalendarEvent `json:"events"`
	CSV          string          `json:"csv"`
	ImportScript string          `json:"import_script"`
}
