package specialist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
)

// ===== Schedule template =====

// ScheduleTemplate describes the daily rhythm a generated calendar
// follows.
type ScheduleTemplate struct {
	PeriodsPerDay int
	PeriodMinutes int
	BreakMinutes  int
	StartTime     string // "07:00"
	WorkDays      int    // consecutive days per week starting Monday
}

// DefaultScheduleTemplate mirrors a standard university semester week,
// Monday through Saturday.
func DefaultScheduleTemplate() ScheduleTemplate {
	return ScheduleTemplate{
		PeriodsPerDay: 6,
		PeriodMinutes: 45,
		BreakMinutes:  15,
		StartTime:     "07:00",
		WorkDays:      6,
	}
}

const defaultPlanWeeks = 4

// ===== Calendar specialist =====

// Calendar builds a study/activity plan from a scheduling request and
// hands the draft back for approval. Requests missing any time signal
// get an information prompt instead of a draft. Generation is
// deterministic apart from the anchor date.
type Calendar struct {
	template ScheduleTemplate
	now      func() time.Time
	logger   *zap.Logger
}

func NewCalendar(template ScheduleTemplate, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if template.PeriodsPerDay == 0 {
		template = DefaultScheduleTemplate()
	}
	return &Calendar{template: template, now: time.Now, logger: logger}
}

func (c *Calendar) Name() string { return "Trợ lý lịch trình" }

func (c *Calendar) Handle(ctx context.Context, message string, history []chat.ChatMessage) (Outcome, error) {
	req := analyzeCalendarRequest(message)
	if !req.hasTimeSignal {
		return textOutcome(calendarInfoRequest()), nil
	}

	plan := c.buildPlan(req)

	c.logger.Debug("calendar plan drafted",
		zap.String("plan_type", req.planType),
		zap.Int("weeks", req.weeks),
		zap.Int("events", len(plan.Events)))

	return Outcome{
		Text:    calendarPreview(plan, req.weeks),
		Confirm: chat.ConfirmCalendarApprove,
		Draft:   plan,
	}, nil
}

// ===== Request analysis =====

type calendarRequest struct {
	planType      string // "study", "exercise", "personal", "mixed"
	weeks         int
	subjects      []string
	hasTimeSignal bool
}

var subjectKeywords = []struct {
	keyword string
	subject string
}{
	{"toán", "Toán"},
	{"lý", "Vật lý"},
	{"hóa", "Hóa học"},
	{"anh", "Tiếng Anh"},
	{"văn", "Ngữ văn"},
	{"tin học", "Tin học"},
}

func analyzeCalendarRequest(message string) calendarRequest {
	lower := strings.ToLower(message)
	req := calendarRequest{planType: "mixed", weeks: defaultPlanWeeks}

	switch {
	case containsAny(lower, "học", "môn học", "khóa học", "study"):
		req.planType = "study"
	case containsAny(lower, "tập", "thể dục", "gym", "exercise"):
		req.planType = "exercise"
	case containsAny(lower, "cá nhân", "sinh hoạt", "personal"):
		req.planType = "personal"
	}

	// "3 tuần" style duration, number immediately before "tuần".
	words := strings.Fields(lower)
	for i, w := range words {
		if strings.Contains(w, "tuần") && i > 0 {
			if n, err := strconv.Atoi(words[i-1]); err == nil && n > 0 {
				req.weeks = n
			}
		}
	}

	for _, sk := range subjectKeywords {
		if strings.Contains(lower, sk.keyword) {
			req.subjects = append(req.subjects, sk.subject)
		}
	}

	req.hasTimeSignal = containsAny(lower,
		"tuần", "ngày", "sáng", "chiều", "tối", "giờ", "thứ",
		"lịch học", "lịch thi", "thời khóa biểu", "tháng")
	return req
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// ===== Plan generation =====

func (c *Calendar) buildPlan(req calendarRequest) *chat.CalendarPlan {
	tpl := c.template

	startHour, startMinute := 7, 0
	if h, m, ok := parseClock(tpl.StartTime); ok {
		startHour, startMinute = h, m
	}

	// Anchor on the coming Monday so week one is always a full week.
	anchor := nextMonday(c.now())

	var events []chat.CalendarEvent
	for week := 0; week < req.weeks; week++ {
		for day := 0; day < tpl.WorkDays; day++ {
			date := anchor.AddDate(0, 0, week*7+day)
			dayStart := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMinute, 0, 0, date.Location())
			for period := 0; period < tpl.PeriodsPerDay; period++ {
				start := dayStart.Add(time.Duration(period*(tpl.PeriodMinutes+tpl.BreakMinutes)) * time.Minute)
				events = append(events, chat.CalendarEvent{
					Title: periodTitle(req, period),
					Start: start,
					End:   start.Add(time.Duration(tpl.PeriodMinutes) * time.Minute),
					Notes: "Hoạt động được lên lịch tự động",
				})
			}
		}
	}

	totalMinutes := len(events) * tpl.PeriodMinutes
	summary := fmt.Sprintf("Lịch %s trong %d tuần: %d sự kiện, khoảng %d giờ/tuần.",
		planTypeLabel(req.planType), req.weeks, len(events), totalMinutes/60/req.weeks)

	return &chat.CalendarPlan{
		Summary:      summary,
		Events:       events,
		CSV:          renderCalendarCSV(events),
		ImportScript: renderImportScript(events),
	}
}

func periodTitle(req calendarRequest, period int) string {
	switch req.planType {
	case "study":
		if len(req.subjects) > 0 {
			return fmt.Sprintf("Học %s - Tiết %d", req.subjects[period%len(req.subjects)], period+1)
		}
		return fmt.Sprintf("Học tập - Tiết %d", period+1)
	case "exercise":
		return fmt.Sprintf("Luyện tập - Buổi %d", period+1)
	default:
		return fmt.Sprintf("Hoạt động %d", period+1)
	}
}

func planTypeLabel(planType string) string {
	switch planType {
	case "study":
		return "học tập"
	case "exercise":
		return "luyện tập"
	case "personal":
		return "cá nhân"
	default:
		return "tổng hợp"
	}
}

func parseClock(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func nextMonday(now time.Time) time.Time {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(time.Monday) - int(date.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return date.AddDate(0, 0, offset)
}

// ===== Rendering =====

// renderCalendarCSV emits the column layout Google Calendar accepts
// for CSV import.
func renderCalendarCSV(events []chat.CalendarEvent) string {
	var b strings.Builder
	b.WriteString("Subject,Start Date,Start Time,End Date,End Time,Description,Location\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s\n",
			csvField(e.Title),
			e.Start.Format("01/02/2006"), e.Start.Format("15:04"),
			e.End.Format("01/02/2006"), e.End.Format("15:04"),
			csvField(e.Notes), csvField(e.Location))
	}
	return b.String()
}

func csvField(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// renderImportScript emits a ready-to-run Google Calendar API snippet
// holding the drafted events.
func renderImportScript(events []chat.CalendarEvent) string {
	var b strings.Builder
	b.WriteString(`"""Google Calendar Import Script"""

from google.oauth2.credentials import Credentials
from google_auth_oauthlib.flow import InstalledAppFlow
from googleapiclient.discovery import build

SCOPES = ['https://www.googleapis.com/auth/calendar']

def main():
    flow = InstalledAppFlow.from_client_secrets_file('credentials.json', SCOPES)
    creds = flow.run_local_server(port=0)
    service = build('calendar', 'v3', credentials=creds)

    events = [
`)
	for _, e := range events {
		fmt.Fprintf(&b, "        {'summary': %q, 'start': {'dateTime': %q, 'timeZone': 'Asia/Ho_Chi_Minh'}, 'end': {'dateTime': %q, 'timeZone': 'Asia/Ho_Chi_Minh'}},\n",
			e.Title, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
	}
	b.WriteString(`    ]

    for event in events:
        service.events().insert(calendarId='primary', body=event).execute()

if __name__ == '__main__':
    main()
`)
	return b.String()
}

func calendarInfoRequest() string {
	return strings.Join([]string{
		"ĐỂ TẠO LỊCH TỐI ƯU, TÔI CẦN THÊM THÔNG TIN:",
		"",
		"1. Khoảng thời gian: bạn muốn lên lịch cho mấy tuần?",
		"2. Thời gian ưa thích: bạn thích học vào khung giờ nào? (VD: sáng 7-11h)",
		"3. Nội dung: lịch học, lịch ôn thi hay hoạt động cá nhân?",
		"",
		"Hãy cung cấp thông tin, tôi sẽ ghi nhận và xử lý!",
	}, "\n")
}

func calendarPreview(plan *chat.CalendarPlan, weeks int) string {
	var b strings.Builder
	b.WriteString("TÓM TẮT LỊCH TRÌNH ĐÃ TẠO\n\n")
	fmt.Fprintf(&b, "%s\n\n", plan.Summary)
	b.WriteString("Gợi ý:\n")
	b.WriteString("- Nên nghỉ 15 phút giữa các buổi học\n")
	b.WriteString("- Ưu tiên học các môn khó vào buổi sáng\n")
	b.WriteString("- Dành thời gian ôn tập vào cuối tuần\n\n")
	b.WriteString("File CSV và code import Google Calendar đã được tạo.\n\n")
	b.WriteString("Bạn có hài lòng với lịch này không?\n")
	b.WriteString("- Trả lời 'OK' nếu đồng ý\n")
	b.WriteString("- Trả lời 'SỬA' để chỉnh sửa\n")
	b.WriteString("- Trả lời 'GOOGLE' để nhận code import Google Calendar")
	return b.String()
}
