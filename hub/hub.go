// Package hub fans console events out to connected websocket clients.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	EventOrderUpdate     = "order_update"
	EventTableUpdate     = "table_update"
	EventTablesSnapshot  = "tables_snapshot"
	EventStaffNotif      = "staff_notification"
	EventDashboardUpdate = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	sessionID string
	role      string
}

// Hub holds the connected consoles keyed by connection, with the session and
// role of the staff member behind each one.
type Hub struct {
	clients map[Conn]client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[Conn]client)}
}

func (h *Hub) Register(conn Conn, sessionID, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{sessionID: sessionID, role: role}
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

// DropSession disconnects every client of a session that has ended and
// returns how many there were.
func (h *Hub) DropSession(sessionID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := 0
	for conn, cl := range h.clients {
		if cl.sessionID == sessionID {
			delete(h.clients, conn)
			conn.Close()
			n++
		}
	}
	return n
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdate, Data: order})
}

func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastTables(blocks []models.Block) {
	h.Broadcast(Message{Event: EventTablesSnapshot, Data: blocks})
}

func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotif, Data: message})
}

func (h *Hub) BroadcastDashboardUpdate(data interface{}) {
	h.Broadcast(Message{Event: EventDashboardUpdate, Data: data})
}

// Broadcast sends msg to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to client with role %s: %v", msg.Event, cl.role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
