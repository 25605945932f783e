package notification

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-gateway/internal/model"
)

func TestPushAssignsMonotonicIDsPerSession(t *testing.T) {
	svc := NewService(time.Minute, nil)

	first := svc.Push("sess-1", model.NotificationInfo, "one")
	second := svc.Push("sess-1", model.NotificationSuccess, "two")
	other := svc.Push("sess-2", model.NotificationInfo, "elsewhere")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	// Counters are per queue, not process-wide.
	assert.Equal(t, int64(1), other.ID)
}

func TestListReturnsEnqueueOrder(t *testing.T) {
	svc := NewService(time.Minute, nil)

	svc.Push("sess-1", model.NotificationInfo, "one")
	svc.Push("sess-1", model.NotificationError, "two")

	items := svc.List("sess-1")
	require.Len(t, items, 2)
	assert.Equal(t, "one", items[0].Message)
	assert.Equal(t, "two", items[1].Message)
}

func TestDismissRemovesOnlyTarget(t *testing.T) {
	svc := NewService(time.Minute, nil)

	a := svc.Push("sess-1", model.NotificationInfo, "keep")
	b := svc.Push("sess-1", model.NotificationInfo, "drop")

	assert.True(t, svc.Dismiss("sess-1", b.ID))
	assert.False(t, svc.Dismiss("sess-1", b.ID))

	items := svc.List("sess-1")
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestDismissedIDIsNeverReused(t *testing.T) {
	svc := NewService(time.Minute, nil)

	first := svc.Push("sess-1", model.NotificationInfo, "one")
	svc.Dismiss("sess-1", first.ID)

	next := svc.Push("sess-1", model.NotificationInfo, "two")
	assert.Greater(t, next.ID, first.ID)
}

func TestClearEmptiesQueue(t *testing.T) {
	svc := NewService(time.Minute, nil)

	svc.Push("sess-1", model.NotificationInfo, "one")
	svc.Clear("sess-1")

	assert.Empty(t, svc.List("sess-1"))
}

func TestQueueIsBounded(t *testing.T) {
	svc := NewService(time.Minute, nil)

	for i := 0; i < maxQueued+10; i++ {
		svc.Push("sess-1", model.NotificationInfo, fmt.Sprintf("n%d", i))
	}

	items := svc.List("sess-1")
	require.Len(t, items, maxQueued)
	assert.Equal(t, "n10", items[0].Message)
}
