package specialist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
)

// ===== Department routing =====

// Department is one destination a support email can be routed to.
type Department struct {
	Key          string
	Name         string
	Email        string
	ResponseTime string
}

// DefaultDepartments returns the built-in directory. Addresses are
// placeholders meant to be overridden from configuration.
func DefaultDepartments() []Department {
	return []Department{
		{Key: "academic", Name: "Phòng Đào tạo", Email: "daotao@yourschool.edu.vn", ResponseTime: "1-2 ngày làm việc"},
		{Key: "administrative", Name: "Phòng Hành chính", Email: "hanhchinh@yourschool.edu.vn", ResponseTime: "2-3 ngày làm việc"},
		{Key: "technical", Name: "Phòng CNTT", Email: "it@yourschool.edu.vn", ResponseTime: "1 ngày làm việc"},
		{Key: "student_services", Name: "Phòng Công tác Sinh viên", Email: "ctsv@yourschool.edu.vn", ResponseTime: "1-2 ngày làm việc"},
		{Key: "general", Name: "Văn phòng Trường", Email: "info@yourschool.edu.vn", ResponseTime: "3-5 ngày làm việc"},
	}
}

var departmentKeywords = map[string][]string{
	"academic":         {"học phí", "môn học", "điểm", "thi", "đăng ký học"},
	"administrative":   {"thủ tục", "giấy tờ", "chứng nhận", "bằng cấp"},
	"technical":        {"website", "hệ thống", "đăng nhập", "lỗi", "không truy cập được"},
	"student_services": {"ký túc xá", "học bổng", "hoạt động", "câu lạc bộ"},
}

// Keyword tables are checked in a fixed order so routing stays
// deterministic when a message matches several departments.
var departmentOrder = []string{"academic", "administrative", "technical", "student_services"}

var subjectTemplates = map[string]string{
	"academic":         "Thắc mắc về vấn đề học tập - %s",
	"administrative":   "Yêu cầu hỗ trợ thủ tục hành chính - %s",
	"technical":        "Báo cáo sự cố kỹ thuật - %s",
	"student_services": "Yêu cầu hỗ trợ sinh viên - %s",
	"general":          "Thắc mắc chung - %s",
}

// ===== Ticket specialist =====

// Ticket drafts a support email to the matching department and hands
// it back for user confirmation. Composition is fully deterministic.
type Ticket struct {
	departments map[string]Department
	logger      *zap.Logger
}

func NewTicket(departments []Department, logger *zap.Logger) *Ticket {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(departments) == 0 {
		departments = DefaultDepartments()
	}
	byKey := make(map[string]Department, len(departments))
	for _, d := range departments {
		byKey[d.Key] = d
	}
	return &Ticket{departments: byKey, logger: logger}
}

func (t *Ticket) Name() string { return "Trợ lý hỗ trợ" }

func (t *Ticket) Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error) {
	deptKey := classifyDepartment(message)
	dept, ok := t.departments[deptKey]
	if !ok {
		dept = t.departments["general"]
	}
	urgency := classifyUrgency(message)

	subject := fmt.Sprintf(subjectTemplates[deptKey], topicSummary(message))
	switch urgency {
	case "urgent":
		subject = "[KHẨN CẤP] " + subject
	case "high_priority":
		subject = "[QUAN TRỌNG] " + subject
	}

	draft := &chat.EmailDraft{
		Recipient: dept.Email,
		Subject:   subject,
		Body:      composeTicketBody(message, urgency),
	}

	t.logger.Debug("support email drafted",
		zap.String("department", deptKey),
		zap.String("urgency", urgency))

	return Outcome{
		Text:    ticketPreview(draft, dept),
		Confirm: chat.ConfirmEmailSend,
		Draft:   draft,
	}, nil
}

func classifyDepartment(message string) string {
	lower := strings.ToLower(message)
	for _, key := range departmentOrder {
		for _, kw := range departmentKeywords[key] {
			if strings.Contains(lower, kw) {
				return key
			}
		}
	}
	return "general"
}

func classifyUrgency(message string) string {
	lower := strings.ToLower(message)
	for _, kw := range []string{"gấp", "khẩn cấp", "urgent", "deadline"} {
		if strings.Contains(lower, kw) {
			return "urgent"
		}
	}
	for _, kw := range []string{"quan trọng", "cần ngay", "sớm"} {
		if strings.Contains(lower, kw) {
			return "high_priority"
		}
	}
	return "normal"
}

var topicStopWords = map[string]bool{
	"tôi": true, "mình": true, "em": true, "anh": true, "chị": true,
	"xin": true, "cho": true, "hỏi": true, "về": true, "như": true,
	"thế": true, "nào": true,
}

// topicSummary keeps the first few meaningful words of the question
// for use in the subject line.
func topicSummary(question string) string {
	var kept []string
	for _, word := range strings.Fields(question) {
		if topicStopWords[strings.ToLower(word)] {
			continue
		}
		kept = append(kept, word)
		if len(kept) == 7 {
			break
		}
	}
	summary := strings.Join(kept, " ")
	if len(summary) > 50 {
		summary = summary[:47] + "..."
	}
	return summary
}

func composeTicketBody(question, urgency string) string {
	var b strings.Builder
	b.WriteString("Kính gửi Quý Phòng,\n\n")
	b.WriteString("Tôi là sinh viên của trường và có thắc mắc cần được hỗ trợ giải đáp.\n\n")
	b.WriteString("Chi tiết thắc mắc:\n")
	fmt.Fprintf(&b, "- %s\n\n", question)
	switch urgency {
	case "urgent":
		b.WriteString("LƯU Ý: Đây là vấn đề khẩn cấp, mong Quý Phòng hỗ trợ xử lý sớm.\n\n")
	case "high_priority":
		b.WriteString("LƯU Ý: Vấn đề này có tính chất quan trọng, mong Quý Phòng ưu tiên xử lý.\n\n")
	}
	b.WriteString("Tôi mong nhận được phản hồi và hướng dẫn từ Quý Phòng.\n\n")
	b.WriteString("Trân trọng cảm ơn!\n\n")
	b.WriteString("---\n")
	b.WriteString("Email này được gửi từ hệ thống chatbot hỗ trợ sinh viên.")
	return b.String()
}

func ticketPreview(draft *chat.EmailDraft, dept Department) string {
	var b strings.Builder
	b.WriteString("PREVIEW EMAIL SẼ GỬI\n\n")
	fmt.Fprintf(&b, "Gửi đến: %s (%s)\n", dept.Name, draft.Recipient)
	fmt.Fprintf(&b, "Chủ đề: %s\n", draft.Subject)
	fmt.Fprintf(&b, "Thời gian phản hồi dự kiến: %s\n\n", dept.ResponseTime)
	b.WriteString("Nội dung email:\n")
	b.WriteString(draft.Body)
	b.WriteString("\n\nBạn có muốn gửi email này không?\n")
	b.WriteString("- Trả lời 'GỬI' để gửi email\n")
	b.WriteString("- Trả lời 'SỬA' để chỉnh sửa nội dung\n")
	b.WriteString("- Trả lời 'HỦY' để hủy gửi email")
	return b.String()
}
