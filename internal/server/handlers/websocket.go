// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	itineraryID       string
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 1024 * 1024, // 1MB
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// ItineraryWebSocketHandler streams itinerary events (detected gaps,
// cascade adjustments) to connected clients in real time
func ItineraryWebSocketHandler(natsConn *nats.Conn, eventsTopic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itineraryID := chi.URLParam(r, "id")
		if itineraryID == "" {
			http.Error(w, "Missing itinerary ID", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:        conn,
			send:        make(chan []byte, 256),
			itineraryID: itineraryID,
			natsConn:    natsConn,
		}

		subject := fmt.Sprintf("%s.%s.events", eventsTopic, itineraryID)
		sub, err := natsConn.Subscribe(subject, func(msg *nats.Msg) {
			select {
			case client.send <- msg.Data:
			default:
				// Slow consumer, drop the event
			}
		})
		if err != nil {
			log.Printf("Failed to subscribe to %s: %v", subject, err)
			conn.Close()
			return
		}
		client.natsSubscriptions = append(client.natsSubscriptions, sub)

		config := DefaultWebSocketConfig()

		go client.writePump(config)
		go client.readPump(config)

		welcome := map[string]interface{}{
			"type":         "connected",
			"itinerary_id": itineraryID,
			"time":         time.Now(),
		}
		if data, err := json.Marshal(welcome); err == nil {
			client.send <- data
		}
	}
}

// readPump pumps messages from the WebSocket connection. Clients send no
// application messages; the pump exists to process control frames and to
// detect a closed connection.
func (c *WebSocketClient) readPump(config WebSocketConfig) {
	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *WebSocketClient) writePump(config WebSocketConfig) {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// The channel was closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes from NATS and closes the connection
func (c *WebSocketClient) closeConnection() {
	for _, sub := range c.natsSubscriptions {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe: %v", err)
		}
	}
	c.natsSubscriptions = nil

	c.conn.Close()
}
