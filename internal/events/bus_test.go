package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	ch := bus.Subscribe(EventClipCreated, 10)

	evt := NewClipCreated(1, "42", "Pilot", "alice", 10, 30, "/out/a.mp4")
	require.NoError(t, bus.Publish(context.Background(), evt))

	select {
	case got := <-ch:
		clip, ok := got.(*ClipCreated)
		require.True(t, ok)
		assert.Equal(t, int64(1), clip.ArtifactID)
		assert.Equal(t, "alice", clip.Username)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	clips := bus.Subscribe(EventClipCreated, 1)
	require.NoError(t, bus.Publish(context.Background(), NewArtifactDeleted(5, "a.mp4", "bob")))

	select {
	case e := <-clips:
		t.Fatalf("unexpected event delivered: %v", e.EventType())
	default:
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	all := bus.SubscribeAll(10)
	require.NoError(t, bus.Publish(context.Background(), NewSnapshotCreated(2, "42", "Pilot", "alice", 123, "/out/a.jpg")))
	require.NoError(t, bus.Publish(context.Background(), NewExtractionFailed("42", "video", 1, "boom")))

	assert.Equal(t, EventSnapshotCreated, (<-all).EventType())
	assert.Equal(t, EventExtractionFailed, (<-all).EventType())
}

func TestBus_FullSubscriberDropsEvent(t *testing.T) {
	bus := NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	_ = bus.Subscribe(EventClipCreated, 0) // never drained, zero buffer

	// Must not block.
	done := make(chan struct{})
	go func() {
		_ = bus.Publish(context.Background(), NewClipCreated(1, "42", "t", "u", 0, 1, "/p"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full subscriber")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	defer func() { _ = bus.Close() }()

	ch := bus.Subscribe(EventClipCreated, 1)
	bus.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel should be closed")
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(nil, nil)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "double close is safe")

	assert.NoError(t, bus.Publish(context.Background(), NewArtifactDeleted(1, "f", "u")))
}
