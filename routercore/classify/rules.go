package classify

import "github.com/uniassist/supportcore/routercore/chat"

// rule binds a category to its keyword set and cue-phrase boosts. Keywords
// are counted against both the raw user message and the model's free-text
// output; boosts fire on the raw message only. All matching is
// case-insensitive substring matching, so the table stays policy data and the
// scorer stays a single generic function.
type rule struct {
	category chat.Category
	keywords []string
	boosts   []boost
}

// boost is a deterministic score bump for a domain-specific cue phrase.
type boost struct {
	phrase string
	weight int
}

// rules is the classification table. Ordering here is irrelevant: ties are
// broken by chat.CategoryPriority, never by table or map order.
var rules = []rule{
	{
		category: chat.CategoryQNA,
		keywords: []string{
			"qna", "faq", "quy định", "chính sách", "học phí",
			"môn học", "đăng ký học", "trường", "policy", "regulation",
		},
		boosts: []boost{
			// Regulation language points at the institutional FAQ.
			{phrase: "thủ tục", weight: 1},
			{phrase: "điều kiện", weight: 1},
			{phrase: "quy chế", weight: 1},
			{phrase: "có được phép", weight: 1},
		},
	},
	{
		category: chat.CategorySearch,
		keywords: []string{
			"search", "tìm kiếm", "tìm thông tin", "nghiên cứu",
			"research", "tra cứu", "google",
		},
		boosts: []boost{
			{phrase: "mới nhất", weight: 1},
			{phrase: "trên web", weight: 1},
		},
	},
	{
		category: chat.CategoryCalendar,
		keywords: []string{
			"calendar", "lịch", "lịch học", "lịch thi", "sự kiện",
			"thời khóa biểu", "schedule", "timetable", "cuộc họp",
		},
		boosts: []boost{
			// Time expressions are a strong calendar signal.
			{phrase: "khi nào", weight: 1},
			{phrase: "bao giờ", weight: 1},
			{phrase: "mấy giờ", weight: 1},
			{phrase: "ngày nào", weight: 1},
			{phrase: "deadline", weight: 1},
			{phrase: "tuần sau", weight: 1},
		},
	},
	{
		category: chat.CategoryTicket,
		keywords: []string{
			"ticket", "email", "hỗ trợ", "báo cáo", "khiếu nại",
			"thắc mắc", "support", "liên hệ",
		},
		boosts: []boost{
			// Failure language implies a support ticket.
			{phrase: "bị lỗi", weight: 1},
			{phrase: "không truy cập được", weight: 1},
			{phrase: "không hoạt động", weight: 1},
			{phrase: "không đăng nhập được", weight: 1},
			{phrase: "gặp sự cố", weight: 1},
		},
	},
	// GENERAL carries no keywords: it wins only when nothing else scores,
	// via the zero-signal default policy in the scorer.
}
