package specialist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
)

// ===== Web search =====

// WebResult is one web search hit.
type WebResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearcher runs a web query and returns up to max hits.
type WebSearcher interface {
	Search(ctx context.Context, query string, max int) ([]WebResult, error)
}

const searchMaxResults = 5

const searchSystemInstructions = `Bạn là trợ lý tra cứu thông tin trên web cho sinh viên.

Dựa vào các kết quả tìm kiếm được cung cấp, tổng hợp câu trả lời ngắn
gọn bằng tiếng Việt. Trích dẫn nguồn bằng cách nêu tên trang ở cuối
câu trả lời. Không bịa thông tin ngoài các kết quả.`

// Search handles queries needing live information: it searches the web
// first, then summarizes the hits for the user.
type Search struct {
	web       WebSearcher
	generator Generator
	logger    *zap.Logger
}

func NewSearch(web WebSearcher, generator Generator, logger *zap.Logger) *Search {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Search{web: web, generator: generator, logger: logger}
}

func (s *Search) Name() string { return "Trợ lý tìm kiếm" }

func (s *Search) Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error) {
	if s.web == nil {
		return Outcome{}, fmt.Errorf("%w: web search not configured", faults.ErrSpecialistDisabled)
	}

	hits, err := s.web.Search(ctx, message, searchMaxResults)
	if err != nil {
		return Outcome{}, fmt.Errorf("web search failed: %w", err)
	}
	if len(hits) == 0 {
		return textOutcome("Không tìm thấy thông tin phù hợp trên web. Bạn thử diễn đạt lại câu hỏi nhé."), nil
	}

	var prompt strings.Builder
	prompt.WriteString("Kết quả tìm kiếm:\n")
	for i, h := range hits {
		fmt.Fprintf(&prompt, "%d. %s\n   %s\n   Nguồn: %s\n", i+1, h.Title, h.Snippet, h.URL)
	}
	fmt.Fprintf(&prompt, "\nCâu hỏi của sinh viên: %s\n\nTổng hợp câu trả lời từ các kết quả trên.", message)

	reply, err := s.generator.Generate(ctx, searchSystemInstructions, prompt.String())
	if err != nil {
		return Outcome{}, fmt.Errorf("search summary generation failed: %w", err)
	}

	s.logger.Debug("web search answered", zap.Int("hits", len(hits)))
	return textOutcome(strings.TrimSpace(reply)), nil
}
