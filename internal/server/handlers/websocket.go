// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"geosnap/internal/adapter/events"
	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
	"geosnap/internal/logging"
)

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

	// Minimum time between two feed pushes to the same client
	MinRefreshInterval time.Duration
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:          10 * time.Second,
		PongWait:           60 * time.Second,
		PingPeriod:         (60 * time.Second * 9) / 10,
		MaxMessageSize:     4 * 1024,
		MinRefreshInterval: 2 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the gateway in front of us
		return true
	},
}

// DiscoverSocket serves live discovery feeds over WebSocket
type DiscoverSocket struct {
	service      feed.Service
	natsConn     *nats.Conn
	photoSubject string
	radius       float64
	config       WebSocketConfig
}

// NewDiscoverSocket creates a live discovery endpoint. natsConn may be nil,
// in which case feeds refresh only on position updates.
func NewDiscoverSocket(service feed.Service, natsConn *nats.Conn, photoSubject string, radius float64) *DiscoverSocket {
	return &DiscoverSocket{
		service:      service,
		natsConn:     natsConn,
		photoSubject: photoSubject,
		radius:       radius,
		config:       DefaultWebSocketConfig(),
	}
}

// discoverClient represents one connected live discovery session
type discoverClient struct {
	socket   *DiscoverSocket
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	refresh  chan struct{}
	userID   string
	mu       sync.Mutex
	position geo.Location
	sub      *nats.Subscription
	once     sync.Once
}

type socketMessage struct {
	Type      string      `json:"type"`
	Latitude  float64     `json:"latitude,omitempty"`
	Longitude float64     `json:"longitude,omitempty"`
	Items     []feed.Item `json:"items,omitempty"`
	Error     string      `json:"error,omitempty"`
	Time      time.Time   `json:"time"`
}

// ServeHTTP upgrades the connection and starts pushing feeds
func (s *DiscoverSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	location, err := locationFromQuery(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	client := &discoverClient{
		socket:   s,
		conn:     conn,
		send:     make(chan []byte, 16),
		done:     make(chan struct{}),
		refresh:  make(chan struct{}, 1),
		userID:   userID,
		position: location,
	}

	if s.natsConn != nil && s.photoSubject != "" {
		sub, err := s.natsConn.Subscribe(s.photoSubject, client.handlePhotoUploaded)
		if err != nil {
			logging.Warn().Err(err).Str("subject", s.photoSubject).Msg("failed to subscribe to photo uploads")
		} else {
			client.sub = sub
		}
	}

	go client.writePump()
	go client.refreshLoop()
	go client.readPump()

	client.requestRefresh()

	logging.Debug().Str("user_id", userID).Msg("live discovery session opened")
}

// readPump reads position updates from the client
func (c *discoverClient) readPump() {
	config := c.socket.config
	defer c.close()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("user_id", c.userID).Msg("websocket error")
			}
			return
		}

		c.processIncomingMessage(message)
	}
}

// writePump pushes queued messages and keepalive pings to the client
func (c *discoverClient) writePump() {
	config := c.socket.config
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
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

// refreshLoop rebuilds the feed whenever a refresh is requested, at most
// once per MinRefreshInterval
func (c *discoverClient) refreshLoop() {
	var last time.Time

	for {
		select {
		case <-c.done:
			return
		case <-c.refresh:
		}

		if wait := c.socket.config.MinRefreshInterval - time.Since(last); wait > 0 {
			select {
			case <-c.done:
				return
			case <-time.After(wait):
			}
		}
		last = time.Now()

		c.pushFeed()
	}
}

func (c *discoverClient) pushFeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.mu.Lock()
	position := c.position
	c.mu.Unlock()

	msg := socketMessage{Type: "feed", Time: time.Now()}
	items, err := c.socket.service.Discover(ctx, position)
	if err != nil {
		msg.Type = "error"
		msg.Error = err.Error()
	} else {
		msg.Items = items
		msg.Latitude = position.Latitude
		msg.Longitude = position.Longitude
	}

	c.enqueue(msg)
}

// processIncomingMessage handles a client message
func (c *discoverClient) processIncomingMessage(message []byte) {
	var msg socketMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.enqueue(socketMessage{Type: "error", Error: "malformed message", Time: time.Now()})
		return
	}

	switch msg.Type {
	case "position":
		location := geo.Location{Latitude: msg.Latitude, Longitude: msg.Longitude}
		if err := location.Validate(); err != nil {
			c.enqueue(socketMessage{Type: "error", Error: err.Error(), Time: time.Now()})
			return
		}

		c.mu.Lock()
		c.position = location
		c.mu.Unlock()
		c.requestRefresh()

	case "refresh":
		c.requestRefresh()

	default:
		c.enqueue(socketMessage{Type: "error", Error: "unknown message type", Time: time.Now()})
	}
}

// handlePhotoUploaded refreshes the feed when a photo lands near the client
func (c *discoverClient) handlePhotoUploaded(m *nats.Msg) {
	event, err := events.DecodePhotoUploaded(m.Data)
	if err != nil {
		return
	}

	c.mu.Lock()
	position := c.position
	c.mu.Unlock()

	uploadedAt := geo.Location{Latitude: event.Latitude, Longitude: event.Longitude}
	if geo.Within(position, uploadedAt, c.socket.radius) {
		c.requestRefresh()
	}
}

func (c *discoverClient) requestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// enqueue drops the message when the client is too slow to keep up
func (c *discoverClient) enqueue(msg socketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		logging.Debug().Str("user_id", c.userID).Msg("dropping message for slow websocket client")
	}
}

// close tears the session down once
func (c *discoverClient) close() {
	c.once.Do(func() {
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		close(c.done)
		c.conn.Close()

		logging.Debug().Str("user_id", c.userID).Msg("live discovery session closed")
	})
}
