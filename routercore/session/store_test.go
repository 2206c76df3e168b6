package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniassist/supportcore/routercore/chat"
)

func appendN(t *testing.T, store Store, userID string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		msg := chat.NewChatMessage(userID, fmt.Sprintf("message %d", i), chat.RoleUser)
		require.NoError(t, store.Append(ctx, userID, msg))
	}
}

func TestMemoryStoreBoundedHistory(t *testing.T) {
	// 25 appends with cap 20 retains the last 20, so the
	// first surviving entry is the 6th appended (index 5).
	store := NewMemoryStore(20)
	appendN(t, store, "u1", 25)

	history := store.Read(context.Background(), "u1")
	require.Len(t, history, 20)
	assert.Equal(t, "message 5", history[0].Content)
	assert.Equal(t, "message 24", history[19].Content)
}

func TestMemoryStoreUnderCap(t *testing.T) {
	store := NewMemoryStore(20)
	appendN(t, store, "u1", 3)

	history := store.Read(context.Background(), "u1")
	require.Len(t, history, 3)
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestMemoryStoreChronologicalOrder(t *testing.T) {
	store := NewMemoryStore(5)
	appendN(t, store, "u1", 8)

	history := store.Read(context.Background(), "u1")
	require.Len(t, history, 5)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp),
			"history must be oldest-to-newest")
	}
	assert.Equal(t, "message 3", history[0].Content)
}

func TestMemoryStoreUsersIndependent(t *testing.T) {
	store := NewMemoryStore(10)
	appendN(t, store, "u1", 4)
	appendN(t, store, "u2", 2)

	assert.Len(t, store.Read(context.Background(), "u1"), 4)
	assert.Len(t, store.Read(context.Background(), "u2"), 2)
}

func TestMemoryStoreReadUnknownUser(t *testing.T) {
	store := NewMemoryStore(10)
	assert.Empty(t, store.Read(context.Background(), "nobody"))
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(10)
	appendN(t, store, "u1", 4)

	assert.True(t, store.Clear(context.Background(), "u1"))
	assert.Empty(t, store.Read(context.Background(), "u1"))
}

func TestMemoryStoreReadReturnsCopy(t *testing.T) {
	store := NewMemoryStore(10)
	appendN(t, store, "u1", 2)

	history := store.Read(context.Background(), "u1")
	history[0].Content = "mutated"

	fresh := store.Read(context.Background(), "u1")
	assert.Equal(t, "message 0", fresh[0].Content)
}

func TestMemoryStoreDefaultCap(t *testing.T) {
	store := NewMemoryStore(0)
	appendN(t, store, "u1", DefaultMaxHistory+5)
	assert.Len(t, store.Read(context.Background(), "u1"), DefaultMaxHistory)
}

func TestComputeStats(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "u1", chat.NewChatMessage("u1", "hi", chat.RoleUser)))
	require.NoError(t, store.Append(ctx, "u1", chat.NewChatMessage("u1", "hello", chat.RoleAssistant)))
	require.NoError(t, store.Append(ctx, "u1", chat.NewChatMessage("u1", "bye", chat.RoleUser)))

	stats := ComputeStats("u1", store.Read(ctx, "u1"))
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, 2, stats.RoleCounts["user"])
	assert.Equal(t, 1, stats.RoleCounts["assistant"])
	require.NotNil(t, stats.FirstInteraction)
	require.NotNil(t, stats.LastInteraction)
	assert.False(t, stats.LastInteraction.Before(*stats.FirstInteraction))
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats("u1", nil)
	assert.Equal(t, 0, stats.TotalMessages)
	assert.Nil(t, stats.FirstInteraction)
	assert.Nil(t, stats.LastInteraction)
}
