package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/assistant/internal/config"
	"github.com/xiaot623/assistant/internal/domain"
)

// Processor forwards a message to the orchestrator.
type Processor interface {
	Process(ctx context.Context, msg *domain.Message) (*domain.DispatchResult, error)
}

// WSServer serves the /ws chat endpoint.
type WSServer struct {
	cfg       *config.Config
	hub       *Hub
	processor Processor
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewWSServer creates a WebSocket chat server.
func NewWSServer(cfg *config.Config, h *Hub, processor Processor, logger *slog.Logger) *WSServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSServer{
		cfg:       cfg,
		hub:       h,
		processor: processor,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.CORSOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket handles GET /ws.
func (s *WSServer) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	if err := s.hub.Register(conn); err != nil {
		ws.Close()
		return nil
	}
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

func (s *WSServer) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	_ = conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", "conn", conn.ID, "error", err)
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

func (s *WSServer) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{}, deadline)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message, deadline); err != nil {
				s.logger.Warn("websocket write failed", "conn", conn.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *WSServer) handleMessage(conn *Connection, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case TypeHello:
		s.handleHello(conn, data)
	case TypeChat:
		s.handleChat(conn, data)
	default:
		s.sendError(conn, base.RequestID, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleHello binds the connection to the session named in the frame,
// falling back to the user ID and then to a fresh session.
func (s *WSServer) handleHello(conn *Connection, data []byte) {
	var msg HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = msg.UserID
	}
	if sessionID == "" {
		sessionID = "sess_" + uuid.New().String()[:8]
	}
	conn.UserID = msg.UserID
	s.hub.BindSession(conn, sessionID)

	_ = s.hub.SendJSON(conn, helloAck(sessionID, msg.RequestID))
}

// helloAck builds the hello acknowledgement.
func helloAck(sessionID, requestID string) BaseMessage {
	return BaseMessage{
		Type:      TypeHelloAck,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: sessionID,
	}
}

// handleChat forwards the message without blocking the read loop. The reply
// is broadcast to every connection of the session.
func (s *WSServer) handleChat(conn *Connection, data []byte) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid chat message")
		return
	}
	if conn.SessionID == "" {
		s.sendError(conn, msg.RequestID, ErrorCodeSessionRequired, "must send hello first")
		return
	}

	sessionID, userID := conn.SessionID, conn.UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := s.processor.Process(ctx, &domain.Message{Text: msg.Message, UserID: userID})
		if err != nil {
			s.logger.Warn("orchestrator call failed", "session", sessionID, "error", err)
			_ = s.hub.BroadcastJSON(sessionID, ErrorMessage{
				BaseMessage: BaseMessage{Type: TypeError, Ts: time.Now().UnixMilli(), RequestID: msg.RequestID, SessionID: sessionID},
				Code:        ErrorCodeUnavailable,
				Message:     "orchestrator unavailable",
			})
			return
		}

		_ = s.hub.BroadcastJSON(sessionID, ReplyMessage{
			BaseMessage:    BaseMessage{Type: TypeReply, Ts: time.Now().UnixMilli(), RequestID: msg.RequestID, SessionID: sessionID},
			DispatchResult: *result,
		})
	}()
}

func (s *WSServer) sendError(conn *Connection, requestID, code, message string) {
	_ = s.hub.SendJSON(conn, ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: conn.SessionID,
		},
		Code:    code,
		Message: message,
	})
}
