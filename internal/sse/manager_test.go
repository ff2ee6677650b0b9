package sse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeckapp/linkdeck/internal/domain"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(logger)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)

	return m
}

func TestBroadcast_FiltersByDocumentKey(t *testing.T) {
	m := setupManager(t)

	alice, err := m.Connect("user_alice")
	require.NoError(t, err)
	bob, err := m.Connect("user_bob")
	require.NoError(t, err)
	defer m.Disconnect(alice.ID)
	defer m.Disconnect(bob.ID)

	doc := &domain.Document{Categories: []domain.Category{}, LastModified: time.Now()}
	m.Emit(NewDocumentUpdatedEvent("user_alice", doc))

	select {
	case event := <-alice.EventChan:
		assert.Equal(t, EventDocumentUpdated, event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber of the written key never got the event")
	}

	select {
	case event := <-bob.EventChan:
		t.Fatalf("subscriber of another key got event %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcast_SameKeyMultipleClients(t *testing.T) {
	m := setupManager(t)

	first, err := m.Connect("user_alice")
	require.NoError(t, err)
	second, err := m.Connect("user_alice")
	require.NoError(t, err)
	defer m.Disconnect(first.ID)
	defer m.Disconnect(second.ID)

	m.Emit(NewDocumentUpdatedEvent("user_alice", &domain.Document{}))

	for _, client := range []*Client{first, second} {
		select {
		case event := <-client.EventChan:
			assert.Equal(t, EventDocumentUpdated, event.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s never got the event", client.ID)
		}
	}
}

func TestDisconnect(t *testing.T) {
	m := setupManager(t)

	client, err := m.Connect("user_alice")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	select {
	case <-client.Done:
	case <-time.After(time.Second):
		t.Fatal("Done channel not closed on disconnect")
	}

	// Disconnecting twice is fine.
	m.Disconnect(client.ID)
}

func TestShutdown_DropsLateEmits(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(logger)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	// Lifecycle order matches the server: stop the run loop, then drain.
	cancel()
	time.Sleep(20 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, m.Shutdown(shutdownCtx))

	// Must not panic on the closed events channel.
	m.Emit(NewHeartbeatEvent())
}
