package notify_test

import (
	"testing"

	"github.com/ethanchou/tempo/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishFansOutInOrder(t *testing.T) {
	bus := notify.NewBus()

	var first, second []notify.Notification
	bus.Subscribe(func(n notify.Notification) { first = append(first, n) })
	bus.Subscribe(func(n notify.Notification) { second = append(second, n) })

	bus.Infof("task %q started", "Essay")
	bus.Errorf("archive failed")

	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	assert.Equal(t, notify.LevelInfo, first[0].Level)
	assert.Equal(t, `task "Essay" started`, first[0].Message)
	assert.Equal(t, notify.LevelError, first[1].Level)
	assert.False(t, first[0].CreatedAt.IsZero())
}

func TestBus_Levels(t *testing.T) {
	bus := notify.NewBus()
	var got []notify.Level
	bus.Subscribe(func(n notify.Notification) { got = append(got, n.Level) })

	bus.Infof("a")
	bus.Warnf("b")
	bus.Errorf("c")

	assert.Equal(t, []notify.Level{notify.LevelInfo, notify.LevelWarning, notify.LevelError}, got)
}

func TestBus_NilSafePublish(t *testing.T) {
	var bus *notify.Bus
	assert.NotPanics(t, func() {
		bus.Publish(notify.Notification{Level: notify.LevelInfo, Message: "ignored"})
	})
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := notify.NewBus()
	assert.NotPanics(t, func() { bus.Infof("nobody listening") })
}
