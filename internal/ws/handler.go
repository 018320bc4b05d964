package ws

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, logger: logger}
}

type subscribeMessage struct {
	Action        string `json:"action"`
	Channel       string `json:"channel"`
	ApplicationID string `json:"applicationId"`
}

// HandleWebSocket subscribes the connection to the channel named in the
// query string (the review queue by default). Further channels can be added
// with {"action":"subscribe",...} messages.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	initial := strings.TrimSpace(c.Query("channel"))
	if initial == "" {
		initial = QueueChannel
	}
	websocket.Handler(func(conn *websocket.Conn) {
		client := NewClient(conn)
		go h.writer(client)
		if ValidChannel(initial) {
			h.subscribe(client, initial)
		}
		h.reader(client)
	}).ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client) {
	defer func() {
		h.hub.UnsubscribeAll(client)
		client.close()
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(msg.Action)) != "subscribe" {
			continue
		}
		channel := subscriptionChannel(msg)
		if channel == "" {
			continue
		}
		h.subscribe(client, channel)
	}
}

func (h *Handler) subscribe(client *Client, channel string) {
	h.hub.Subscribe(channel, client)
	ack, _ := json.Marshal(map[string]string{"type": "subscribed", "channel": channel})
	client.send(ack)
	h.logger.Debug("ws subscribed", zap.String("channel", channel))
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func subscriptionChannel(msg subscribeMessage) string {
	channel := strings.TrimSpace(msg.Channel)
	switch strings.ToLower(channel) {
	case QueueChannel, "queue":
		return QueueChannel
	case "application":
		id := strings.TrimSpace(msg.ApplicationID)
		if id == "" {
			return ""
		}
		return ApplicationChannel(id)
	}
	if ValidChannel(channel) {
		return channel
	}
	return ""
}
