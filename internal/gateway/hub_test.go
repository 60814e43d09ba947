package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesSession(t *testing.T) {
	hub := newTestHub(t)

	a := hub.NewConnection(nil)
	b := hub.NewConnection(nil)
	other := hub.NewConnection(nil)
	for _, c := range []*Connection{a, b, other} {
		require.NoError(t, hub.Register(c))
	}
	hub.BindSession(a, "s1")
	hub.BindSession(b, "s1")
	hub.BindSession(other, "s2")
	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 3 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, hub.SessionCount())

	require.NoError(t, hub.BroadcastJSON("s1", map[string]string{"type": "reply"}))
	for _, c := range []*Connection{a, b} {
		select {
		case data := <-c.Send:
			assert.JSONEq(t, `{"type":"reply"}`, string(data))
		case <-time.After(time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewConnection(nil)
	require.NoError(t, hub.Register(c))
	hub.BindSession(c, "s1")
	hub.Unregister(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return hub.SessionCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.ErrorIs(t, hub.Register(hub.NewConnection(nil)), ErrHubStopped)
	assert.ErrorIs(t, hub.BroadcastJSON("s1", "x"), ErrHubStopped)
}
