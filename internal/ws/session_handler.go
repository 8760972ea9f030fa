package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/sim"
	"github.com/playmatatu/ropesim/internal/world"
)

// MoveAnchorData drags a named anchor to (X, Y).
type MoveAnchorData struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Viewer is the identity behind a connection. Anonymous viewers (empty
// Operator) can only watch.
type Viewer struct {
	Operator string
	// Audit records an operator action; nil skips auditing.
	Audit func(action string, details map[string]interface{}, success bool)
}

func (v Viewer) audit(action string, details map[string]interface{}, success bool) {
	if v.Audit != nil {
		v.Audit(action, details, success)
	}
}

// SessionHub is the single hub for all session rooms.
var SessionHub *Hub

var (
	managerMu sync.RWMutex
	manager   *sim.Manager
)

func init() {
	SessionHub = NewHub()
	go runSessionHub(SessionHub)
}

// SetManager wires the session manager and forwards its snapshots to rooms.
func SetManager(m *sim.Manager) {
	managerMu.Lock()
	manager = m
	managerMu.Unlock()
	if m == nil {
		return
	}
	m.OnSnapshot(func(sessionID string, snap world.Snapshot) {
		if SessionHub.RoomSize(sessionID) == 0 {
			return
		}
		SessionHub.BroadcastToSession(sessionID, snapshotMessage(sessionID, snap))
	})
}

func currentManager() *sim.Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return manager
}

func snapshotMessage(sessionID string, snap world.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"type":       "snapshot",
		"session_id": sessionID,
		"snapshot":   snap,
	}
}

func newClientID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "c_" + hex.EncodeToString(b)
}

// HandleWebSocket attaches a viewer to the room of session :id.
func HandleWebSocket(c *gin.Context, viewer Viewer) {
	m := currentManager()
	if m == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "simulation not available"})
		return
	}
	s, err := m.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		id:        newClientID(),
		sessionID: s.ID,
		viewer:    viewer,
		send:      make(chan []byte, 64),
	}

	SessionHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runSessionHub owns room membership.
func runSessionHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.sessionID]; !exists {
				h.rooms[client.sessionID] = make(map[*Client]bool)
			}
			h.rooms[client.sessionID][client] = true
			size := len(h.rooms[client.sessionID])
			h.mu.Unlock()

			log.Printf("[WS] Client %s joined session %s (room_size=%d)", client.id, client.sessionID, size)

			// Late joiners get the current state straight away
			if m := currentManager(); m != nil {
				if s, err := m.Get(client.sessionID); err == nil {
					client.sendJSON(snapshotMessage(s.ID, s.Snapshot()))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.sessionID]; exists && room[client] {
				delete(room, client)
				close(client.send)
				if len(room) == 0 {
					delete(h.rooms, client.sessionID)
				}
				log.Printf("[WS] Client %s left session %s", client.id, client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads viewer messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		SessionHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(8192)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes viewer messages.
func (c *Client) handleMessage(msg WSMessage) {
	m := currentManager()
	if m == nil {
		c.sendError("Simulation not available")
		return
	}
	s, err := m.Get(c.sessionID)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	switch msg.Type {
	case "get_state":
		c.sendJSON(snapshotMessage(s.ID, s.Snapshot()))

	case "move_anchor":
		if c.viewer.Operator == "" {
			c.sendError("Operator token required to move anchors")
			return
		}
		var data MoveAnchorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid anchor data")
			return
		}
		err := s.MoveAnchor(data.Name, rope.NewVec2(data.X, data.Y))
		c.viewer.audit("move_anchor", map[string]interface{}{
			"session_id": s.ID, "name": data.Name, "x": data.X, "y": data.Y,
		}, err == nil)
		if err != nil {
			switch {
			case errors.Is(err, sim.ErrInvalidRequest):
				c.sendError("Anchor position must be finite")
			case errors.Is(err, world.ErrAnchorNotFound):
				c.sendError("Anchor not found")
			default:
				c.sendError(err.Error())
			}
			return
		}
		log.Printf("[WS] Operator %s moved anchor %s in session %s", c.viewer.Operator, data.Name, s.ID)
		SessionHub.BroadcastToSession(s.ID, snapshotMessage(s.ID, s.Snapshot()))

	default:
		c.sendError("Unknown message type")
	}
}
