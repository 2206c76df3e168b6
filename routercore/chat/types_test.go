package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{"ASSISTANT", RoleAssistant, false},
		{"  user  ", RoleUser, false},
		{"system", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := RoleFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"qna", CategoryQNA, false},
		{"SEARCH", CategorySearch, false},
		{"calendar", CategoryCalendar, false},
		{"ticket", CategoryTicket, false},
		{"general", CategoryGeneral, false},
		{"unknown", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := CategoryFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewChatMessage(t *testing.T) {
	msg := NewChatMessage("sv001", "xin chào", RoleUser)

	assert.True(t, strings.HasPrefix(msg.ID, "msg_"))
	assert.Len(t, msg.ID, len("msg_")+16)
	assert.Equal(t, "sv001", msg.UserID)
	assert.Equal(t, "xin chào", msg.Content)
	assert.Equal(t, RoleUser, msg.Role)
	assert.False(t, msg.Timestamp.IsZero())

	other := NewChatMessage("sv001", "xin chào", RoleUser)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestCategoryPriorityCoversAllCategories(t *testing.T) {
	seen := make(map[Category]bool, len(CategoryPriority))
	for _, cat := range CategoryPriority {
		seen[cat] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, CategoryQNA, CategoryPriority[0])
	assert.Equal(t, CategoryGeneral, CategoryPriority[len(CategoryPriority)-1])
}
