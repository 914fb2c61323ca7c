// Package realtime broadcasts product comments to every connected websocket
// client.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/metrics"
)

// Event names on the wire.
const (
	EventSendComment    = "send_comment"
	EventReceiveComment = "receive_comment"
)

const (
	anonymous      = "Anonymous"
	maxMessageSize = 4096
	sendBuffer     = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
)

// Envelope is the frame exchanged with clients.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// IncomingComment is the payload of send_comment.
type IncomingComment struct {
	User    string `json:"user"`
	Comment string `json:"comment"`
}

// Comment is the payload of receive_comment.
type Comment struct {
	User    string `json:"user"`
	Comment string `json:"comment"`
	Time    string `json:"time"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the set of connected clients. All membership changes and
// broadcasts go through Run's goroutine.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	count      chan chan int
	done       chan struct{}

	upgrader websocket.Upgrader
	log      zerolog.Logger
	now      func() time.Time
}

// NewHub builds a hub. Call Run before serving connections.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
		now: time.Now,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	defer func() {
		close(h.done)
		for c := range clients {
			close(c.send)
		}
		metrics.CommentClients.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			metrics.CommentClients.Set(float64(len(clients)))
			h.log.Debug().Str("client", c.id).Msg("comment client connected")
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				metrics.CommentClients.Set(float64(len(clients)))
				h.log.Debug().Str("client", c.id).Msg("comment client disconnected")
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					delete(clients, c)
					close(c.send)
				}
			}
			metrics.CommentClients.Set(float64(len(clients)))
			metrics.CommentsBroadcastTotal.Inc()
		case reply := <-h.count:
			reply <- len(clients)
		}
	}
}

// Clients returns the number of connected clients, or 0 once the hub stopped.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Publish sends a comment to every client. user defaults to Anonymous.
func (h *Hub) Publish(in IncomingComment) bool {
	user := strings.TrimSpace(in.User)
	if user == "" {
		user = anonymous
	}
	data, err := json.Marshal(Comment{User: user, Comment: in.Comment, Time: h.now().Format("15:04:05")})
	if err != nil {
		return false
	}
	frame, err := json.Marshal(Envelope{Event: EventReceiveComment, Data: data})
	if err != nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- frame:
		return true
	case <-h.done:
		return false
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return nil
	}
	go h.writePump(c)
	go h.readPump(c)
	return nil
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Str("client", c.id).Msg("comment client read failed")
			}
			return
		}
		if env.Event != EventSendComment {
			continue
		}
		var in IncomingComment
		if err := json.Unmarshal(env.Data, &in); err != nil || strings.TrimSpace(in.Comment) == "" {
			continue
		}
		h.log.Info().Str("client", c.id).Str("user", in.User).Msg("comment received")
		h.Publish(in)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
