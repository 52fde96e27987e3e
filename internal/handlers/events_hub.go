package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"uniconnect/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Change-feed channel names. "notifications" is implicitly scoped to the
// connected user; the rest are shared collections whose consumers refetch.
const (
	ChannelAnnouncements = "announcements"
	ChannelExams         = "exams"
	ChannelPolls         = "polls"
	ChannelMeetings      = "meetings"
	ChannelSchedule      = "schedule"
	ChannelNotifications = "notifications"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the SPA is served from a separate origin in development
	},
}

// GlobalHub is the single change-feed hub for the whole process.
var GlobalHub = NewHub()

// ChangeEvent is what subscribers receive. No ordering or delivery guarantee
// is promised; clients treat every event as "refetch the collection".
type ChangeEvent struct {
	Channel   string `json:"channel"`
	Action    string `json:"action"` // insert, update, delete
	ID        uint   `json:"id"`
	ClassName string `json:"className,omitempty"`
	UserID    uint   `json:"-"` // targeted delivery only, never serialized
}

type clientCommand struct {
	Action  string `json:"action"` // subscribe, unsubscribe
	Channel string `json:"channel"`
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uint
	mu       sync.Mutex
	channels map[string]bool
}

func (c *Client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[channel]
}

type Hub struct {
	clients    map[*Client]bool
	events     chan ChangeEvent
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		events:     make(chan ChangeEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Change-feed client connected", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Change-feed client disconnected", "user_id", client.userID)

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

// Publish queues a change event for delivery. Never blocks the caller: a full
// queue drops the event, which is acceptable because consumers refetch on the
// next one.
func (h *Hub) Publish(event ChangeEvent) {
	select {
	case h.events <- event:
	default:
		slog.Warn("Change-feed queue full, dropping event", "channel", event.Channel)
	}
}

// PublishToUser targets one user's connections, used for personal
// notification alerts.
func (h *Hub) PublishToUser(userID uint, event ChangeEvent) {
	event.UserID = userID
	h.Publish(event)
}

func (h *Hub) dispatch(event ChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal change event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if event.UserID != 0 && client.userID != event.UserID {
			continue
		}
		if !client.subscribed(event.Channel) {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Unexpected websocket close", "error", err)
			}
			break
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			slog.Warn("Ignoring malformed change-feed command", "error", err)
			continue
		}
		c.mu.Lock()
		switch cmd.Action {
		case "subscribe":
			c.channels[cmd.Channel] = true
		case "unsubscribe":
			delete(c.channels, cmd.Channel)
		}
		c.mu.Unlock()
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Failed to write change event to websocket", "error", err)
			return
		}
	}
}

// EventsWSEndpoint upgrades an authenticated request into a change-feed
// connection. Clients start with no subscriptions and opt in per channel.
func EventsWSEndpoint(c *gin.Context) {
	ident := middleware.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:      GlobalHub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   ident.UserID,
		channels: make(map[string]bool),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
