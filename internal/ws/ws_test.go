package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/sim"
)

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestRelayEvent(t *testing.T) {
	h := NewHub()
	watcher := &Client{id: "c1", sessionID: "sim_a", send: make(chan []byte, 4)}
	h.rooms["sim_a"] = map[*Client]bool{watcher: true}

	relayEvent(h, `{"type":"session_paused","session_id":"sim_a"}`)
	relayEvent(h, `{"type":"session_paused","session_id":"sim_b"}`)
	relayEvent(h, `not json`)
	relayEvent(h, `{"type":"session_created","session_id":"sim_a"}`)

	if len(watcher.send) != 1 {
		t.Fatalf("queued %d messages, want 1", len(watcher.send))
	}
	var got map[string]interface{}
	json.Unmarshal(<-watcher.send, &got)
	if got["type"] != "session_paused" {
		t.Fatalf("relayed %v", got)
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	slow := &Client{id: "slow", sessionID: "s", send: make(chan []byte, 1)}
	h.rooms["s"] = map[*Client]bool{slow: true}

	h.BroadcastToSession("s", map[string]int{"n": 1})
	h.BroadcastToSession("s", map[string]int{"n": 2})

	if len(slow.send) != 1 {
		t.Fatalf("buffer holds %d messages, want 1", len(slow.send))
	}
}

type auditEntry struct {
	action  string
	success bool
}

func dialSession(t *testing.T, srvURL, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srvURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	return conn
}

func TestWebSocketSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := sim.NewManager(nil, nil, &config.Config{TickRate: 60})
	SetManager(m)
	defer SetManager(nil)

	s, err := m.Create("viewer test", "op")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Pause()

	audits := make(chan auditEntry, 8)
	router := gin.New()
	router.GET("/sessions/:id/ws", func(c *gin.Context) {
		HandleWebSocket(c, Viewer{})
	})
	router.GET("/op/sessions/:id/ws", func(c *gin.Context) {
		HandleWebSocket(c, Viewer{
			Operator: "op",
			Audit: func(action string, _ map[string]interface{}, success bool) {
				audits <- auditEntry{action: action, success: success}
			},
		})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions/missing/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	viewer := dialSession(t, srv.URL, "/sessions/"+s.ID+"/ws")
	defer viewer.Close()

	if first := readMessage(t, viewer); first["type"] != "snapshot" || first["session_id"] != s.ID {
		t.Fatalf("first message = %v", first)
	}

	// Anonymous viewers cannot touch anchors, not even create one.
	viewer.WriteJSON(map[string]interface{}{
		"type": "move_anchor",
		"data": map[string]interface{}{"name": "evil", "x": 1, "y": 2},
	})
	if msg := readMessage(t, viewer); msg["type"] != "error" {
		t.Fatalf("anonymous move_anchor reply = %v", msg)
	}
	if anchors := s.Snapshot().Anchors; len(anchors) != 0 {
		t.Fatalf("anonymous viewer changed anchors: %+v", anchors)
	}

	viewer.WriteJSON(map[string]interface{}{"type": "teleport"})
	if msg := readMessage(t, viewer); msg["type"] != "error" {
		t.Fatalf("unknown type reply = %v", msg)
	}

	viewer.WriteJSON(map[string]interface{}{"type": "get_state"})
	if msg := readMessage(t, viewer); msg["type"] != "snapshot" {
		t.Fatalf("get_state reply = %v", msg)
	}

	s.SetAnchor("hook", rope.NewVec2(0, 0))
	op := dialSession(t, srv.URL, "/op/sessions/"+s.ID+"/ws")
	defer op.Close()
	readMessage(t, op)

	op.WriteJSON(map[string]interface{}{
		"type": "move_anchor",
		"data": map[string]interface{}{"name": "hook", "x": 5, "y": 6},
	})
	moved := readMessage(t, op)
	snap, _ := moved["snapshot"].(map[string]interface{})
	anchors, _ := snap["anchors"].([]interface{})
	if len(anchors) != 1 {
		t.Fatalf("anchors = %v", snap["anchors"])
	}
	anchor := anchors[0].(map[string]interface{})
	pos := anchor["position"].(map[string]interface{})
	if anchor["name"] != "hook" || pos["x"] != 5.0 || pos["y"] != 6.0 {
		t.Fatalf("anchor = %v", anchor)
	}

	op.WriteJSON(map[string]interface{}{
		"type": "move_anchor",
		"data": map[string]interface{}{"name": "ghost", "x": 1, "y": 1},
	})
	if msg := readMessage(t, op); msg["type"] != "error" {
		t.Fatalf("missing anchor reply = %v", msg)
	}
	if n := len(s.Snapshot().Anchors); n != 1 {
		t.Fatalf("anchors = %d, want 1", n)
	}

	for _, want := range []auditEntry{{"move_anchor", true}, {"move_anchor", false}} {
		select {
		case got := <-audits:
			if got != want {
				t.Fatalf("audit = %+v, want %+v", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("missing audit entry %+v", want)
		}
	}
}
