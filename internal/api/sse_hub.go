package api

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// QuestionEvent is one progress update streamed to clients watching a
// question run
type QuestionEvent struct {
	QuestionID string                 `json:"question_id"`
	EventType  string                 `json:"event_type"`
	Completed  int                    `json:"completed"`
	Total      int                    `json:"total"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	QuestionID string
	Channel    chan QuestionEvent
}

// SSEHub fans question progress events out to SSE clients keyed by question
// id. Slow clients are skipped, never blocked on.
type SSEHub struct {
	clients    map[string]map[chan QuestionEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan QuestionEvent
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan QuestionEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan QuestionEvent, 100),
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.QuestionID] == nil {
				h.clients[client.QuestionID] = make(map[chan QuestionEvent]bool)
			}
			h.clients[client.QuestionID][client.Channel] = true
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.QuestionID]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				if len(clients) == 0 {
					delete(h.clients, client.QuestionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			if clients, exists := h.clients[event.QuestionID]; exists {
				for clientChan := range clients {
					select {
					case clientChan <- event:
					default:
						log.Printf("[SSE] client channel full for question %s, skipping event",
							event.QuestionID)
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast sends an event to all clients watching its question
func (h *SSEHub) Broadcast(event QuestionEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] broadcast channel full, dropping event: %s", event.EventType)
	}
}

// HandleSSE streams question events to one client connection
func (h *SSEHub) HandleSSE(c *gin.Context) {
	questionID := c.Param("id")
	if questionID == "" {
		c.JSON(400, gin.H{"error": "question id required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	clientChan := make(chan QuestionEvent, 10)

	select {
	case h.register <- SSEClient{QuestionID: questionID, Channel: clientChan}:
	default:
		c.JSON(500, gin.H{"error": "SSE hub registration failed"})
		return
	}

	defer func() {
		select {
		case h.unregister <- SSEClient{QuestionID: questionID, Channel: clientChan}:
		default:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("question", string(eventJSON))
			return true

		case <-time.After(30 * time.Second):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// ClientCount returns the number of active clients for a question
func (h *SSEHub) ClientCount(questionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if clients, exists := h.clients[questionID]; exists {
		return len(clients)
	}
	return 0
}
