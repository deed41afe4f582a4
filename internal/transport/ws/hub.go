package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgWatching acknowledges a registered watcher. Progress events use the
// service event names (session_started, answer_saved, survey_completed).
const MsgWatching MessageType = "watching"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans survey progress events out to the admins watching each survey
type Hub struct {
	// survey -> watcher connections
	watchers map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	SurveyID string
	UserID   string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SurveyID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.SurveyID] == nil {
				h.watchers[conn.SurveyID] = make(map[*Connection]bool)
			}
			h.watchers[conn.SurveyID][conn] = true
			n := len(h.watchers[conn.SurveyID])
			h.mu.Unlock()
			log.Printf("[WS] %s watching survey %s (%d watchers)", conn.UserID, conn.SurveyID, n)

			ack, _ := json.Marshal(map[string]interface{}{"surveyId": conn.SurveyID, "watchers": n})
			send(conn, &Message{Type: MsgWatching, Payload: ack})

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.SurveyID]; ok && conns[conn] {
				delete(conns, conn)
				if len(conns) == 0 {
					delete(h.watchers, conn.SurveyID)
				}
				close(conn.Send)
				log.Printf("[WS] %s stopped watching survey %s", conn.UserID, conn.SurveyID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.watchers[msg.SurveyID] {
				send(conn, msg.Message)
			}
			h.mu.RUnlock()
		}
	}
}

// send drops the message if the connection's buffer is full
func send(conn *Connection, msg *Message) {
	data, _ := json.Marshal(msg)
	select {
	case conn.Send <- data:
	default:
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Watchers returns the number of connections watching surveyID
func (h *Hub) Watchers(surveyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[surveyID])
}

// BroadcastToSurvey sends an event to every watcher of surveyID (implements service.Broadcaster)
func (h *Hub) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] encode %s for survey %s: %v", msgType, surveyID, err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		SurveyID: surveyID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
