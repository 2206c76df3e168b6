// Package classify maps a user message plus bounded history to a task
// category. The judgment call is delegated to an opaque text model; this
// package owns everything around it: transcript rendering, deterministic
// keyword scoring, tie-break, confidence tiers, and failure fallback.
// Classify never returns an error to its caller.
package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
)

// Generator is the opaque text-generation capability. Implementations may
// fail on network/provider errors; the classifier treats any failure as
// recoverable.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// maxContextMessages bounds how much history is rendered into the
// classification prompt.
const maxContextMessages = 10

const systemInstructions = `Bạn là một AI chuyên phân loại task cho chatbot hỗ trợ sinh viên.
Phân tích tin nhắn của người dùng và xác định loại task phù hợp nhất.

Các loại task:
1. QNA: Câu hỏi về quy định, chính sách, FAQ của trường, thông tin sinh viên
2. SEARCH: Tìm kiếm thông tin trên web, nghiên cứu chủ đề
3. CALENDAR: Quản lý lịch học, lịch thi, sự kiện của trường
4. TICKET: Gửi ticket, email hỗ trợ, báo cáo vấn đề cho ban quản lý
5. GENERAL: Các câu hỏi chung, trò chuyện thông thường

Ví dụ tin nhắn và phân loại:
- "Quy định về đăng ký học phần của trường như thế nào?" -> QNA
- "Tìm kiếm thông tin về AI mới nhất" -> SEARCH
- "Lịch thi cuối kỳ khi nào?" -> CALENDAR
- "Hệ thống LMS bị lỗi, cần hỗ trợ" -> TICKET
- "Chào bạn, hôm nay thế nào?" -> GENERAL

Trả lời ngắn gọn: loại task và lý do phân loại.`

// Classifier scores model output and raw input against the rule table.
type Classifier struct {
	generator Generator
	logger    *zap.Logger
}

// New creates a Classifier. A nil logger is replaced with a no-op.
func New(generator Generator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{generator: generator, logger: logger}
}

// Classify determines the task category for one inbound message.
//
// Failure semantics: if the generator fails, the result is
// {GENERAL, 0.3, error text}. If keyword signal is absent entirely, the
// result defaults to {QNA, 0.6} - unrecognized requests go to the
// institutional FAQ rather than open-ended chat.
func (c *Classifier) Classify(ctx context.Context, message string, history []chat.ChatMessage) chat.TaskClassification {
	prompt := fmt.Sprintf("Lịch sử trò chuyện:\n%s\n\nTin nhắn hiện tại cần phân loại: %q\n\nHãy phân tích và phân loại task này.",
		RenderTranscript(history, maxContextMessages), message)

	modelOutput, err := c.generator.Generate(ctx, systemInstructions, prompt)
	if err != nil {
		c.logger.Warn("classification model call failed",
			zap.String("fault_kind", string(faults.Classify(err))),
			zap.Error(err),
		)
		return chat.TaskClassification{
			Category:   chat.CategoryGeneral,
			Confidence: 0.3,
			Rationale:  faults.Redact(fmt.Errorf("%w: %v", faults.ErrModelFailure, err)),
		}
	}

	category, score := scoreCategories(message, modelOutput)
	classification := chat.TaskClassification{
		Category:   category,
		Confidence: confidenceTier(score),
		Rationale:  strings.TrimSpace(modelOutput),
	}
	if score == 0 {
		// No keyword signal at all: default to the institutional FAQ.
		classification.Category = chat.CategoryQNA
	}

	c.logger.Debug("message classified",
		zap.String("category", string(classification.Category)),
		zap.Float64("confidence", classification.Confidence),
		zap.Int("score", score),
	)
	return classification
}

// RenderTranscript formats the most recent limit messages as role-tagged,
// timestamped lines, oldest first.
func RenderTranscript(history []chat.ChatMessage, limit int) string {
	if len(history) == 0 {
		return "Không có lịch sử trò chuyện."
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		role := "Người dùng"
		if msg.Role == chat.RoleAssistant {
			role = "Trợ lý"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			msg.Timestamp.Format("2006-01-02 15:04:05"), role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// parseCategoryTag extracts an explicit "CATEGORY: rationale" tag from the
// first line of model output. Absent or unparseable tags are not an error;
// the keyword scorer carries the decision on its own.
func parseCategoryTag(modelOutput string) (chat.Category, bool) {
	line := strings.TrimSpace(modelOutput)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	head, _, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	category, err := chat.CategoryFromString(head)
	if err != nil {
		return "", false
	}
	return category, true
}

// scoreCategories counts keyword matches against both the raw message and
// the model output, applies boosts and the model's explicit category tag,
// and picks the argmax. Ties resolve by the fixed chat.CategoryPriority
// order.
func scoreCategories(message, modelOutput string) (chat.Category, int) {
	msg := strings.ToLower(message)
	out := strings.ToLower(modelOutput)

	scores := make(map[chat.Category]int, len(rules))
	for _, r := range rules {
		score := 0
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				score++
			}
			if strings.Contains(out, kw) {
				score++
			}
		}
		for _, b := range r.boosts {
			if strings.Contains(msg, b.phrase) {
				score += b.weight
			}
		}
		scores[r.category] = score
	}

	if tagged, ok := parseCategoryTag(modelOutput); ok {
		scores[tagged]++
	}

	best := chat.CategoryGeneral
	bestScore := 0
	for _, cat := range chat.CategoryPriority {
		if score := scores[cat]; score > bestScore {
			best = cat
			bestScore = score
		}
	}
	return best, bestScore
}

// confidenceTier maps a winning keyword score to a confidence value.
func confidenceTier(score int) float64 {
	switch {
	case score >= 3:
		return 0.9
	case score >= 2:
		return 0.8
	case score >= 1:
		return 0.7
	default:
		return 0.6
	}
}
