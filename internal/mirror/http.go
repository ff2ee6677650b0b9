package mirror

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"encoding/json/jsontext"
	"encoding/json/v2"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// reconnectDelay paces SSE reconnect attempts after a dropped stream.
const reconnectDelay = 3 * time.Second

// HTTPMirror talks to a mirrord instance. Document get/put calls carry a
// per-call timeout; the change subscription holds a long-lived streaming
// connection that reconnects until unsubscribed.
type HTTPMirror struct {
	baseURL string
	client  *http.Client
	// streamClient has no timeout: an SSE stream is supposed to stay open.
	streamClient *http.Client
	logger       *slog.Logger
}

// NewHTTPMirror creates a mirror client for the given base URL.
func NewHTTPMirror(baseURL string, requestTimeout time.Duration, logger *slog.Logger) *HTTPMirror {
	return &HTTPMirror{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: requestTimeout},
		streamClient: &http.Client{},
		logger:       logger,
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Data    jsontext.Value `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Success bool            `json:"success"`
}

// GetDocument implements Mirror.
func (m *HTTPMirror) GetDocument(ctx context.Context, key string) (*domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.documentURL(key), nil)
	if err != nil {
		return nil, errors.Sync("failed to build request", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Sync("remote unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var env envelope
		if err := json.UnmarshalRead(resp.Body, &env); err != nil {
			return nil, errors.Sync("failed to decode remote document", err)
		}
		var doc domain.Document
		if err := json.Unmarshal(env.Data, &doc); err != nil {
			return nil, errors.Sync("failed to decode remote document", err)
		}
		return &doc, nil
	case http.StatusNotFound:
		return nil, errors.NotFoundf("no document for key %s", key)
	default:
		return nil, errors.Sync(fmt.Sprintf("remote returned status %d", resp.StatusCode), nil)
	}
}

// PutDocument implements Mirror.
func (m *HTTPMirror) PutDocument(ctx context.Context, key string, doc *domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Sync("failed to encode document", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, m.documentURL(key), bytes.NewReader(body))
	if err != nil {
		return errors.Sync("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Sync("remote unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return errors.Sync(fmt.Sprintf("remote returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// Subscribe implements Mirror. A goroutine holds the SSE stream open and
// reconnects after errors until the returned func is called.
func (m *HTTPMirror) Subscribe(ctx context.Context, key string, onChange func(doc *domain.Document)) (func(), error) {
	streamCtx, cancel := context.WithCancel(ctx)

	go func() {
		for {
			if streamCtx.Err() != nil {
				return
			}
			if err := m.stream(streamCtx, key, onChange); err != nil && streamCtx.Err() == nil {
				m.logger.Warn("change stream dropped, reconnecting",
					"key", key, "error", err)
			}
			select {
			case <-streamCtx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(cancel)
	}
	return unsubscribe, nil
}

// stream opens one SSE connection and dispatches document events until
// the stream breaks or the context is canceled.
func (m *HTTPMirror) stream(ctx context.Context, key string, onChange func(doc *domain.Document)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.documentURL(key)+"/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	var eventName string
	var data bytes.Buffer

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if eventName == "document.updated" && data.Len() > 0 {
				m.dispatch(data.Bytes(), onChange)
			}
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	return scanner.Err()
}

// dispatch decodes a document event payload and invokes the callback.
func (m *HTTPMirror) dispatch(payload []byte, onChange func(doc *domain.Document)) {
	var event struct {
		Data *domain.Document `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.Data == nil {
		m.logger.Warn("unparseable change event", "error", err)
		return
	}
	onChange(event.Data)
}

func (m *HTTPMirror) documentURL(key string) string {
	return m.baseURL + "/api/v1/documents/" + key
}
