package socket

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kmelnikov/scrabbled/server/message"
)

type (
	// GorillaConfig contains the timing fields for gorilla websocket
	// connections.
	GorillaConfig struct {
		// ReadWait is the amount of time that can pass between received
		// frames (including pongs) before the connection is considered dead.
		ReadWait time.Duration
		// WriteWait is the amount of time a single write can take.
		WriteWait time.Duration
	}

	// gorillaUpgrader implements the Upgrader interface by wrapping a
	// gorilla/websocket upgrader.
	gorillaUpgrader struct {
		*websocket.Upgrader
		GorillaConfig
	}

	// gorillaConn implements the Conn interface by wrapping a
	// gorilla/websocket connection.
	gorillaConn struct {
		*websocket.Conn
		GorillaConfig
	}
)

// NewUpgrader creates an upgrader that creates gorilla websocket connections.
func (cfg GorillaConfig) NewUpgrader() (Upgrader, error) {
	switch {
	case cfg.ReadWait <= 0:
		return nil, fmt.Errorf("creating upgrader: positive read wait period required")
	case cfg.WriteWait <= 0:
		return nil, fmt.Errorf("creating upgrader: positive write wait period required")
	}
	u := gorillaUpgrader{
		Upgrader:      new(websocket.Upgrader),
		GorillaConfig: cfg,
	}
	return &u, nil
}

// Upgrade creates a Conn from the http request.
func (u *gorillaUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c.SetReadDeadline(time.Now().Add(u.ReadWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(u.ReadWait))
	})
	gc := gorillaConn{
		Conn:          c,
		GorillaConfig: u.GorillaConfig,
	}
	return &gc, nil
}

// ReadMessage reads the next json message from the connection.  Any received
// frame extends the read deadline.
func (c *gorillaConn) ReadMessage(m *message.Message) error {
	if err := c.Conn.ReadJSON(m); err != nil {
		return err
	}
	return c.Conn.SetReadDeadline(time.Now().Add(c.ReadWait))
}

// WriteMessage writes the message as json to the connection.
func (c *gorillaConn) WriteMessage(m message.Message) error {
	c.Conn.SetWriteDeadline(time.Now().Add(c.WriteWait))
	return c.Conn.WriteJSON(m)
}

// WritePing writes a ping message on the connection.
func (c *gorillaConn) WritePing() error {
	return c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.WriteWait))
}

// WriteClose writes a close message on the connection.  The connection is NOT
// closed.
func (c *gorillaConn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return c.Conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(c.WriteWait))
}

// IsNormalClose determines if the error is a normal close of the connection.
func (*gorillaConn) IsNormalClose(err error) bool {
	_, ok := err.(*websocket.CloseError) // only errors from gorilla can be normal close errors
	return ok && !websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
