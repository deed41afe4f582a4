package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // admin token is checked before the upgrade
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
	}
}

// SurveyWS handles GET /v1/ws/surveys/{surveyId}?token=
func (h *Handler) SurveyWS(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.Role != model.RoleAdmin {
		http.Error(w, "admin token required", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SurveyID: surveyID,
		UserID:   claims.UserID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// readPump discards anything a watcher sends; it only exists to process
// pongs and notice the peer going away
func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer h.hub.Unregister(conn)
	defer wsConn.Close()

	extend := func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	}
	wsConn.SetReadLimit(maxMessageSize)
	extend("")
	wsConn.SetPongHandler(extend)

	for {
		_, _, err := wsConn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			log.Printf("[WS] survey=%s watcher=%s read error: %v", conn.SurveyID, conn.UserID, err)
		}
		return
	}
}

// writePump delivers queued events and keeps the connection alive with
// pings. It returns once the hub closes Send or a write fails.
func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer wsConn.Close()

	write := func(kind int, data []byte) bool {
		wsConn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := wsConn.WriteMessage(kind, data); err != nil {
			log.Printf("[WS] survey=%s watcher=%s dropped: %v", conn.SurveyID, conn.UserID, err)
			return false
		}
		return true
	}

	for {
		select {
		case event, open := <-conn.Send:
			if !open {
				write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if !write(websocket.TextMessage, event) {
				return
			}
		case <-ping.C:
			if !write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}
