// Package readers extracts text from user-attached files so it can be
// folded into a chat turn. Failures never abort a turn; the reader
// returns an explanatory placeholder instead.
package readers

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxFileBytes bounds how much attached content one turn can carry.
const maxFileBytes = 256 * 1024

// Reader turns attached files into prompt text.
type Reader struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Read returns the file's text content, or a placeholder describing
// why it could not be read.
func (r *Reader) Read(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		r.logger.Warn("attached file unreadable", zap.String("path", path), zap.Error(err))
		return fmt.Sprintf("[Không thể đọc file %s: file không tồn tại hoặc không truy cập được]", filepath.Base(path))
	}
	if info.Size() > maxFileBytes {
		return fmt.Sprintf("[File %s quá lớn để đưa vào hội thoại (tối đa %d KB)]", filepath.Base(path), maxFileBytes/1024)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("attached file unreadable", zap.String("path", path), zap.Error(err))
		return fmt.Sprintf("[Không thể đọc file %s]", filepath.Base(path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return renderCSV(filepath.Base(path), data)
	case ".txt", ".md", ".log":
		return renderText(filepath.Base(path), data)
	default:
		if !utf8.Valid(data) {
			return fmt.Sprintf("[File %s không phải file văn bản nên không đọc được nội dung]", filepath.Base(path))
		}
		return renderText(filepath.Base(path), data)
	}
}

func renderText(name string, data []byte) string {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Sprintf("[File %s rỗng]", name)
	}
	return text
}

// renderCSV flattens rows into "a | b | c" lines, which reads better
// in a prompt than raw comma text with quoting.
func renderCSV(name string, data []byte) string {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		return renderText(name, data)
	}

	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, " | "))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
