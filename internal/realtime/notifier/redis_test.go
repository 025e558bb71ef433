package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kushal45/OMS-sub001/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisNotifier(t *testing.T) *RedisNotifier {
	t.Helper()
	mr := miniredis.RunT(t)
	n, err := NewRedisNotifier(zap.NewNop(), config.NotifierRedisConfig{
		Addr:    mr.Addr(),
		Channel: "test:events",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestRedisNotifier_ConnectFailure(t *testing.T) {
	_, err := NewRedisNotifier(zap.NewNop(), config.NotifierRedisConfig{
		Addr:    "127.0.0.1:1",
		Channel: "test:events",
	})
	assert.Error(t, err)
}

func TestRedisNotifier_PublishWatchRoundTrip(t *testing.T) {
	n := newTestRedisNotifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := n.Watch(ctx)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{"type": "order_update"})
	require.NoError(t, err)
	require.NoError(t, n.Publish(ctx, &Event{
		Origin:  "instance-a",
		Rooms:   []string{"user:u-1"},
		Payload: payload,
	}))

	select {
	case evt := <-events:
		require.NotNil(t, evt)
		assert.Equal(t, "instance-a", evt.Origin)
		assert.False(t, evt.All)
		assert.Equal(t, []string{"user:u-1"}, evt.Rooms)
		assert.JSONEq(t, string(payload), string(evt.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisNotifier_WatchStopsOnCancel(t *testing.T) {
	n := newTestRedisNotifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := n.Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}

func TestFactory(t *testing.T) {
	n, err := New(zap.NewNop(), config.NotifierConfig{Type: "noop"})
	assert.NoError(t, err)
	assert.Nil(t, n)

	n, err = New(zap.NewNop(), config.NotifierConfig{})
	assert.NoError(t, err)
	assert.Nil(t, n)

	_, err = New(zap.NewNop(), config.NotifierConfig{Type: "kafka"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	n, err = New(zap.NewNop(), config.NotifierConfig{
		Type:  "redis",
		Redis: config.NotifierRedisConfig{Addr: mr.Addr(), Channel: "c"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, n)
	assert.NoError(t, n.Close())
}
