package sse

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"encoding/json/v2"
)

// writeDeadline is pushed forward after every successful write so an
// idle but healthy stream is not reaped.
const writeDeadline = 60 * time.Second

// Handler streams the change feed for one document key over SSE.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// Stream serves one SSE connection subscribed to the given document
// key. It returns when the client goes away or the manager closes the
// subscription.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request, key string) {
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("SSE stream does not support flushing", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(key)
	if err != nil {
		h.logger.Error("failed to register change feed client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID), slog.String("key", key))

	greeting := map[string]string{"client_id": client.ID, "message": "change feed established"}
	if err := h.writeEvent(w, rc, "connected", greeting); err != nil {
		log.Warn("greeting never reached the client", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.writeEvent(w, rc, string(event.Type), event); err != nil {
				// A write failure here means the client hung up.
				log.Info("client disconnected during send")
				return
			}

		case <-client.Done:
			log.Info("subscription closed by manager")
			return

		case <-r.Context().Done():
			log.Info("client context canceled")
			return
		}
	}
}

// writeEvent emits a single event/data frame and flushes it.
func (h *Handler) writeEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	return rc.SetWriteDeadline(time.Now().Add(writeDeadline))
}
