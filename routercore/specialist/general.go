package specialist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/classify"
	"github.com/uniassist/supportcore/routercore/faults"
)

const generalSystemInstructions = `Bạn là trợ lý hỗ trợ sinh viên của trường đại học, thân thiện và hữu ích.

Bạn có thể giúp sinh viên:
- Trả lời câu hỏi về quy định, chính sách của trường (FAQ)
- Tìm kiếm thông tin trên web
- Lập lịch học, lịch thi và tạo file import Google Calendar
- Soạn email hỗ trợ gửi đến phòng ban phù hợp

Trả lời ngắn gọn, lịch sự, bằng tiếng Việt. Nếu câu hỏi nằm ngoài khả
năng của bạn, hãy nói rõ và gợi ý sinh viên liên hệ phòng Công tác
Sinh viên.`

// General answers small talk and anything no specialist claims. It
// never fails terminally: a model error degrades to the canned
// capability summary.
type General struct {
	generator Generator
	logger    *zap.Logger
}

func NewGeneral(generator Generator, logger *zap.Logger) *General {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &General{generator: generator, logger: logger}
}

func (g *General) Name() string { return "Trợ lý chung" }

func (g *General) Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error) {
	var prompt strings.Builder
	prompt.WriteString("Lịch sử trò chuyện:\n")
	prompt.WriteString(classify.RenderTranscript(history, 10))
	fmt.Fprintf(&prompt, "\n\nTin nhắn hiện tại: %s\n\nTrả lời tin nhắn trên.", message)

	reply, err := g.generator.Generate(ctx, generalSystemInstructions, prompt.String())
	if err != nil {
		g.logger.Warn("general reply generation failed", zap.String("error", faults.Redact(err)))
		return textOutcome(faults.MsgCapabilities), nil
	}
	return textOutcome(strings.TrimSpace(reply)), nil
}
