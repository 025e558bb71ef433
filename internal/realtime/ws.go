package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/common/cnst"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/kushal45/OMS-sub001/pkg/metrics"
	"github.com/kushal45/OMS-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler terminates websocket sessions for the hub: it upgrades the
// connection, authenticates the handshake credential, registers the session,
// and runs the read/write pumps until disconnect.
type WSHandler struct {
	logger   *zap.Logger
	hub      *Hub
	authn    *auth.SessionAuthenticator
	cfg      config.RealtimeConfig
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// clientMessage is the inbound message shape accepted from clients
type clientMessage struct {
	Type string `json:"type"`
	Data struct {
		Type string `json:"type"`
	} `json:"data"`
}

// NewWSHandler creates the websocket handler. Allowed origins come from the
// CORS configuration; a nil config or a "*" entry accepts any origin.
func NewWSHandler(logger *zap.Logger, hub *Hub, authn *auth.SessionAuthenticator, cfg config.RealtimeConfig, cors *config.CORSConfig, m *metrics.Metrics) *WSHandler {
	h := &WSHandler{
		logger:  logger.Named("realtime.ws"),
		hub:     hub,
		authn:   authn,
		cfg:     cfg,
		metrics: m,
	}
	h.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || cors == nil {
				return true
			}
			for _, allowed := range cors.AllowOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Handle upgrades the request and runs the session until disconnect
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	principal, err := h.authn.Authenticate(handshakeToken(c.Request))
	if err != nil {
		// the client gets one error event, then a forced disconnect; no
		// retry on this side, it must reconnect with valid credentials
		h.metrics.WSRejected()
		h.writeDirect(conn, NewEnvelope(cnst.EventError, gin.H{"message": "authentication failed"}))
		_ = conn.Close()
		return
	}

	sess := NewSession(uuid.NewString(), principal, h.cfg.QueueSize)
	if err := h.hub.Registry().Register(sess); err != nil {
		h.logger.Error("failed to register session",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		_ = conn.Close()
		return
	}
	h.metrics.WSConnected()

	h.logger.Info("session connected",
		zap.String("session_id", sess.ID),
		zap.String("user_id", principal.UserID),
		zap.String("role", principal.Role))

	connected := NewEnvelope(cnst.EventConnected, gin.H{
		"sessionId": sess.ID,
		"userId":    principal.UserID,
		"role":      principal.Role,
	})
	connected.UserID = principal.UserID
	_ = sess.Send(connected)

	go h.writePump(conn, sess)
	h.readPump(conn, sess)

	h.hub.Registry().Unregister(sess.ID)
	_ = conn.Close()
	h.metrics.WSDisconnected()
	h.logger.Info("session disconnected",
		zap.String("session_id", sess.ID),
		zap.String("user_id", principal.UserID))
}

// handshakeToken pulls the credential from the token query parameter or the
// Authorization header.
func handshakeToken(r *http.Request) string {
	bearer, _ := auth.BearerToken(r.Header.Get("Authorization"))
	return utils.FirstNonEmpty(r.URL.Query().Get("token"), bearer)
}

// readPump consumes client messages until the connection drops
func (h *WSHandler) readPump(conn *websocket.Conn, sess *Session) {
	pongWait := 2 * h.cfg.PingInterval
	conn.SetReadLimit(h.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read error",
					zap.String("session_id", sess.ID),
					zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleClientMessage(sess, data)
	}
}

// writePump drains the session queue and keeps the connection alive
func (h *WSHandler) writePump(conn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-sess.Queue():
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("write error",
					zap.String("session_id", sess.ID),
					zap.Error(err))
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-sess.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleClientMessage dispatches one inbound message. Subscribe and
// unsubscribe are idempotent and always acknowledged.
func (h *WSHandler) handleClientMessage(sess *Session, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug("malformed client message",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return
	}

	switch msg.Type {
	case cnst.MsgPing:
		_ = sess.Send(NewEnvelope(cnst.EventPong, nil))
	case cnst.MsgSubscribeOrders:
		h.subscribe(sess, cnst.RoomOrderUpdates)
	case cnst.MsgSubscribeInventory:
		h.subscribe(sess, cnst.RoomInventoryUpdates)
	case cnst.MsgSubscribe:
		if msg.Data.Type == "" {
			_ = sess.Send(NewEnvelope(cnst.EventError, gin.H{"message": "missing subscription type"}))
			return
		}
		h.subscribe(sess, topicRoom(msg.Data.Type))
	case cnst.MsgUnsubscribe:
		if msg.Data.Type == "" {
			_ = sess.Send(NewEnvelope(cnst.EventError, gin.H{"message": "missing subscription type"}))
			return
		}
		room := topicRoom(msg.Data.Type)
		sess.Leave(room)
		_ = sess.Send(NewEnvelope(cnst.EventSubscriptionCancelled, gin.H{"room": room}))
	default:
		h.logger.Debug("unknown message type",
			zap.String("session_id", sess.ID),
			zap.String("type", msg.Type))
	}
}

func (h *WSHandler) subscribe(sess *Session, room string) {
	sess.Join(room)
	_ = sess.Send(NewEnvelope(cnst.EventSubscriptionConfirmed, gin.H{"room": room}))
}

// topicRoom maps a client topic name to its room label
func topicRoom(topic string) string {
	if strings.HasSuffix(topic, cnst.RoomSuffix) {
		return topic
	}
	return topic + cnst.RoomSuffix
}

// writeDirect writes an envelope before the session pumps exist, e.g. the
// handshake rejection event.
func (h *WSHandler) writeDirect(conn *websocket.Conn, env *Envelope) {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(env); err != nil {
		h.logger.Debug("failed to write handshake error", zap.Error(err))
	}
}
