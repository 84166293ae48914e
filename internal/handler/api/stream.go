package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	"StockPilot/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	StreamAudit  = "audit"
	StreamResult = "result"

	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// StreamMessage is one frame pushed to websocket subscribers.
type StreamMessage struct {
	Type       string                 `json:"type"`
	WorkflowID string                 `json:"workflow_id,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Audit      *models.AuditEvent     `json:"audit,omitempty"`
	Result     *models.WorkflowResult `json:"result,omitempty"`
}

type subscriber struct {
	conn     *websocket.Conn
	send     chan []byte
	workflow string
}

func (s *subscriber) wants(workflowID string) bool {
	return s.workflow == "" || s.workflow == workflowID
}

// StreamHub fans workflow events out to websocket clients. It implements
// EventPublisher so the coordinator can publish to it next to Kafka.
// Slow clients drop frames instead of blocking the pipeline.
type StreamHub struct {
	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
	upgrader websocket.Upgrader
	ping     time.Duration
	l        *logger.Logger
}

func NewStreamHub(l *logger.Logger, ping time.Duration) *StreamHub {
	if l == nil {
		l = logger.NewNop()
	}
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &StreamHub{
		subs: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ping: ping,
		l:    l,
	}
}

func (h *StreamHub) PublishAudit(_ context.Context, ev models.AuditEvent) error {
	e := ev
	h.broadcast(StreamMessage{Type: StreamAudit, WorkflowID: ev.WorkflowID, Audit: &e})
	return nil
}

func (h *StreamHub) PublishResult(_ context.Context, requestID string, res *models.WorkflowResult) error {
	msg := StreamMessage{Type: StreamResult, RequestID: requestID, Result: res}
	if res != nil {
		msg.WorkflowID = res.WorkflowID
	}
	h.broadcast(msg)
	return nil
}

func (h *StreamHub) broadcast(msg StreamMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.l.Warn("stream marshal error", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(msg.WorkflowID) {
			continue
		}
		select {
		case s.send <- b:
		default:
			h.l.Debug("stream frame dropped", logger.String("workflow_id", msg.WorkflowID))
		}
	}
}

// Clients is the number of connected subscribers.
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Serve upgrades the request and streams events until the client goes away.
// ?workflow_id= narrows the stream to one workflow.
func (h *StreamHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("stream upgrade failed", logger.Error(err))
		return nil
	}

	s := &subscriber{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		workflow: c.QueryParam("workflow_id"),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	h.l.Info("stream client connected", logger.String("remote", c.RealIP()), logger.String("workflow_id", s.workflow))

	done := make(chan struct{})
	go h.readLoop(s, done)
	h.writeLoop(s, done)

	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	_ = conn.Close()
	h.l.Info("stream client disconnected", logger.String("remote", c.RealIP()))
	return nil
}

// readLoop drains control frames; any read error ends the session.
func (h *StreamHub) readLoop(s *subscriber, done chan<- struct{}) {
	defer close(done)
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writeLoop(s *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case b := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.l.Debug("stream write error", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ domrepo.EventPublisher = (*StreamHub)(nil)
