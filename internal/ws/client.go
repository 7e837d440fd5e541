package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"easyorders/entity"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the session token is checked before the upgrade
		return true
	},
}

type Authenticator interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
	LoadSettings(ctx context.Context) (*entity.Settings, error)
}

// Client is one websocket subscriber.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

// readPump only watches for disconnects; subscribers do not send messages.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.With(sl.Err(err)).Debug("websocket read")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// ServeWS upgrades a request carrying ?token=<session> into a live feed
// subscription. Only actors admitted to the orders page are accepted.
func ServeWS(hub *Hub, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		user, err := auth.AuthenticateByToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		settings, err := auth.LoadSettings(r.Context())
		if err != nil {
			hub.log.With(sl.Err(err)).Error("load settings")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !user.CanManageOrders() || !security.HasAccess(user, settings.RoleAccess) {
			http.Error(w, "access denied", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.With(sl.Err(err), slog.Int64("user_id", user.ID)).Warn("websocket upgrade")
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			userID: user.ID,
			send:   make(chan []byte, 256),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
