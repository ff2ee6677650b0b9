package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linkdeckapp/linkdeck/internal/id"
)

const (
	heartbeatInterval = 30 * time.Second
	queueSize         = 1000
	clientBuffer      = 100
)

// Client is one connected change feed subscriber.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// Key is the document key this client subscribed to. Only events
	// for this key (and heartbeats) are delivered.
	Key string
}

// Manager fans queued events out to subscribers, filtered by document
// key. One Manager serves the whole mirror process.
type Manager struct {
	clients map[string]*Client
	queue   chan Event
	logger  *slog.Logger
	runWG   sync.WaitGroup
	mu      sync.RWMutex

	// closed guards the queue channel once Shutdown has begun.
	closedMu sync.RWMutex
	closed   bool
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		queue:   make(chan Event, queueSize),
		logger:  logger,
	}
}

// Start runs the fan-out loop until the context is canceled. Call once,
// in its own goroutine, at process startup.
func (m *Manager) Start(ctx context.Context) {
	m.runWG.Add(1)
	defer m.runWG.Done()

	m.logger.Info("change feed manager starting")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-m.queue:
			m.fanOut(event)

		case <-heartbeat.C:
			m.fanOut(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("change feed manager stopping")
			m.dropAllClients()
			return
		}
	}
}

// Emit queues an event for delivery. Safe from any goroutine; events
// emitted after shutdown began are silently dropped.
func (m *Manager) Emit(event Event) {
	m.closedMu.RLock()
	defer m.closedMu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- event:
	default:
		m.logger.Warn("event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// Shutdown stops accepting events, drains what is already queued, and
// waits for the run loop to exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	// Mark closed and close the queue under the same lock so a
	// concurrent Emit cannot send on a closed channel.
	m.closedMu.Lock()
	m.closed = true
	close(m.queue)
	m.closedMu.Unlock()

	drained := make(chan struct{})
	go func() {
		for event := range m.queue {
			m.fanOut(event)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("change feed drain timed out, queued events lost")
	}

	m.runWG.Wait()
	m.logger.Info("change feed manager stopped")
	return nil
}

// fanOut delivers one event to every matching subscriber. Slow clients
// lose the event rather than stalling the loop.
func (m *Manager) fanOut(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var delivered, dropped int
	for _, client := range m.clients {
		// Heartbeats go everywhere; change events only to subscribers
		// of the same document key.
		if event.Key != "" && event.Key != client.Key {
			continue
		}

		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("subscriber too slow, event dropped",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event delivered",
			slog.String("event_type", string(event.Type)),
			slog.String("key", event.Key),
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
}

// Connect registers a subscriber for one document key.
func (m *Manager) Connect(key string) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		Key:         key,
		EventChan:   make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("subscriber connected",
		slog.String("client_id", clientID),
		slog.String("key", key),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect removes a subscriber and closes its channels. Unknown ids
// are ignored, so a double disconnect is harmless.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	total := len(m.clients)
	m.mu.Unlock()

	if !ok {
		return
	}
	close(client.Done)
	close(client.EventChan)

	m.logger.Info("subscriber disconnected",
		slog.String("client_id", clientID),
		slog.Int("total_clients", total))
}

func (m *Manager) dropAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for clientID, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
		delete(m.clients, clientID)
	}
}

// ClientCount reports the number of connected subscribers.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
