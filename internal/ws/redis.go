package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/ropesim/internal/sim"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// StartEventSubscriber subscribes to session lifecycle events and relays them
// to the matching rooms.
func StartEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, sim.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", sim.EventsChannel)
		for msg := range ch {
			relayEvent(SessionHub, msg.Payload)
		}
		log.Printf("[WS] %s subscriber stopped", sim.EventsChannel)
	}()
}

// relayEvent forwards one event payload to its session room.
func relayEvent(h *Hub, raw string) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	typeStr, _ := payload["type"].(string)
	sessionID, _ := payload["session_id"].(string)
	if typeStr == "" || sessionID == "" {
		log.Printf("[WS] event missing type or session_id: %s", raw)
		return
	}

	switch typeStr {
	case "session_created":
		// nobody can be watching yet
		return
	case "session_paused", "session_running", "session_closed":
		if h.RoomSize(sessionID) == 0 {
			return
		}
		log.Printf("[WS] relaying %s to session %s (room_size=%d)", typeStr, sessionID, h.RoomSize(sessionID))
		h.BroadcastToSession(sessionID, payload)
	default:
		log.Printf("[WS] unknown event type: %s", typeStr)
	}
}
