// Package specialist holds the per-category handlers a routed turn is
// delegated to, plus the registry that owns their availability.
package specialist

import (
	"context"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
	"github.com/uniassist/supportcore/routercore/observability"
)

// ===== Interfaces =====

// Generator produces model text for a system instruction and prompt.
type Generator interface {
	Generate(ctx context.Context, system string, prompt string) (string, error)
}

// Specialist handles messages routed to one task category.
type Specialist interface {
	// Name returns a short human-readable handler name used in
	// apologies and logs.
	Name() string

	// Handle produces the reply for one routed message. The history
	// slice is oldest-first and read-only.
	Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error)
}

// Outcome is the result of one specialist invocation. When Confirm is
// anything but ConfirmNone, Draft carries the artifact awaiting the
// user's decision (*chat.EmailDraft or *chat.CalendarPlan).
type Outcome struct {
	Text    string
	Confirm chat.ConfirmKind
	Draft   any
}

func textOutcome(text string) Outcome {
	return Outcome{Text: text, Confirm: chat.ConfirmNone}
}

// ===== Registry =====

// Registry maps categories to specialists. Availability is fixed at
// construction time: Register is called during startup wiring only, so
// Dispatch reads the maps without locking.
type Registry struct {
	handlers  map[chat.Category]Specialist
	available map[chat.Category]bool
	general   Specialist
	logger    *zap.Logger
}

// NewRegistry creates a registry around the always-available general
// handler.
func NewRegistry(general Specialist, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		handlers:  make(map[chat.Category]Specialist),
		available: make(map[chat.Category]bool),
		general:   general,
		logger:    logger,
	}
}

// Register binds a specialist to a category. An unavailable specialist
// stays registered so stats can report it, but Dispatch never calls it.
func (r *Registry) Register(category chat.Category, s Specialist, available bool) {
	r.handlers[category] = s
	r.available[category] = available
}

// Available reports whether the category has a usable specialist.
func (r *Registry) Available(category chat.Category) bool {
	if category == chat.CategoryGeneral {
		return true
	}
	return r.available[category]
}

// Dispatch routes one message to the category's specialist. It never
// returns an error: an unavailable specialist falls through to the
// general handler, and a failing specialist is converted to an apology
// at this boundary.
func (r *Registry) Dispatch(ctx context.Context, category chat.Category, message string, history []chat.ChatMessage) Outcome {
	if category != chat.CategoryGeneral {
		s, ok := r.handlers[category]
		if !ok || !r.available[category] {
			r.logger.Warn("specialist unavailable, falling back to general",
				zap.String("category", string(category)))
			observability.RecordSpecialist(string(category), "fallback")
		} else {
			out, err := s.Handle(ctx, message, history)
			if err != nil {
				r.logger.Warn("specialist failed",
					zap.String("specialist", s.Name()),
					zap.String("category", string(category)),
					zap.String("error", faults.Redact(err)))
				observability.RecordSpecialist(string(category), "apology")
				return textOutcome(faults.SpecialistApology(s.Name()))
			}
			observability.RecordSpecialist(string(category), "success")
			return out
		}
	}

	out, err := r.general.Handle(ctx, message, history)
	if err != nil {
		r.logger.Warn("general handler failed",
			zap.String("error", faults.Redact(err)))
		return textOutcome(faults.MsgCapabilities)
	}
	return out
}
