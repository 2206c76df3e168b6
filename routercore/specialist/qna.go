package specialist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
)

// ===== FAQ retrieval =====

// FAQResult is one retrieved question/answer pair with its similarity
// to the query.
type FAQResult struct {
	Question  string
	Answer    string
	Relevance float32
}

// FAQSearcher retrieves the k most relevant FAQ entries for a query.
// An empty result set is valid and means no entry matched.
type FAQSearcher interface {
	Search(ctx context.Context, query string, k int) ([]FAQResult, error)
}

const qnaTopK = 3

const qnaSystemInstructions = `Bạn là trợ lý tư vấn quy định và chính sách của trường đại học.

Dựa vào các mục FAQ được cung cấp, trả lời câu hỏi của sinh viên một
cách chính xác và đầy đủ. Nếu FAQ không bao phủ câu hỏi, hãy trả lời
dựa trên hiểu biết chung nhưng nói rõ rằng sinh viên nên xác nhận lại
với phòng Đào tạo.

Trả lời bằng tiếng Việt, ngắn gọn và có cấu trúc.`

// QnA answers regulation and policy questions by retrieving FAQ
// entries and synthesizing a reply from them.
type QnA struct {
	faq       FAQSearcher
	generator Generator
	logger    *zap.Logger
}

func NewQnA(faq FAQSearcher, generator Generator, logger *zap.Logger) *QnA {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QnA{faq: faq, generator: generator, logger: logger}
}

func (q *QnA) Name() string { return "Trợ lý FAQ" }

func (q *QnA) Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error) {
	if q.faq == nil {
		return Outcome{}, fmt.Errorf("%w: faq store not configured", faults.ErrSpecialistDisabled)
	}

	results, err := q.faq.Search(ctx, message, qnaTopK)
	if err != nil {
		return Outcome{}, fmt.Errorf("faq lookup failed: %w", err)
	}

	var prompt strings.Builder
	if len(results) == 0 {
		prompt.WriteString("Không có mục FAQ nào phù hợp với câu hỏi.\n")
	} else {
		prompt.WriteString("Các mục FAQ liên quan:\n")
		for i, r := range results {
			fmt.Fprintf(&prompt, "%d. Hỏi: %s\n   Đáp: %s\n", i+1, r.Question, r.Answer)
		}
	}
	fmt.Fprintf(&prompt, "\nCâu hỏi của sinh viên: %s\n\nTrả lời câu hỏi trên.", message)

	reply, err := q.generator.Generate(ctx, qnaSystemInstructions, prompt.String())
	if err != nil {
		return Outcome{}, fmt.Errorf("faq answer generation failed: %w", err)
	}

	q.logger.Debug("faq answered",
		zap.Int("matches", len(results)),
		zap.Int("reply_chars", len(reply)))
	return textOutcome(strings.TrimSpace(reply)), nil
}
