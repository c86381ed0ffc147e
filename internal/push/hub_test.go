package push

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBeforeSubscribeIsReplayed(t *testing.T) {
	hub := NewHub()
	hub.Publish("conn-1", Envelope{Name: "first"})
	hub.Publish("conn-1", Envelope{Name: "second"})

	sub, backlog, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, backlog, 2)
	assert.Equal(t, "first", backlog[0].Name)
	assert.Equal(t, "second", backlog[1].Name)

	// The backlog is handed over once; a reconnect starts clean.
	sub2, backlog2, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub2.Close()
	assert.Empty(t, backlog2)
}

func TestPublishReachesLiveSubscriber(t *testing.T) {
	hub := NewHub()
	sub, backlog, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub.Close()
	require.Empty(t, backlog)

	hub.Publish("conn-1", Envelope{Name: "live", Data: map[string]string{"k": "v"}})

	select {
	case envelope := <-sub.Events():
		assert.Equal(t, "live", envelope.Name)
	case <-time.After(time.Second):
		t.Fatal("expected envelope on subscriber channel")
	}
}

func TestDeliveredEnvelopeIsNotReplayed(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("conn-1")
	require.NoError(t, err)

	hub.Publish("conn-1", Envelope{Name: "response"})

	select {
	case envelope := <-sub.Events():
		assert.Equal(t, "response", envelope.Name)
	case <-time.After(time.Second):
		t.Fatal("expected envelope on subscriber channel")
	}
	sub.Close()

	// The response reached the live subscriber, so a reconnect must not
	// receive it a second time.
	sub2, backlog, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub2.Close()
	assert.Empty(t, backlog)
}

func TestPublishIsScopedToConnection(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish("conn-2", Envelope{Name: "other"})

	select {
	case envelope := <-sub.Events():
		t.Fatalf("unexpected envelope %q", envelope.Name)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestReplayBufferKeepsMostRecent(t *testing.T) {
	hub := NewHub()
	for i := 0; i < DefaultBufferSize+5; i++ {
		hub.Publish("conn-1", Envelope{Name: "n", Data: i})
	}

	sub, backlog, err := hub.Subscribe("conn-1")
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, backlog, DefaultBufferSize)
	assert.Equal(t, 5, backlog[0].Data)
}

func TestSubscribeRejectsEmptyConnectionID(t *testing.T) {
	hub := NewHub()
	_, _, err := hub.Subscribe("  ")
	assert.Error(t, err)
}
