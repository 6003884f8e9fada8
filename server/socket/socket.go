// Package socket adapts websocket connections for the connection registry.
package socket

import (
	"net"
	"net/http"

	"github.com/kmelnikov/scrabbled/server/message"
)

type (
	// Upgrader turns http requests into websocket connections.
	Upgrader interface {
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}

	// Conn is a client connection the registry reads and writes messages on.
	Conn interface {
		// ReadMessage reads the next json message from the connection.
		// BLOCKING
		ReadMessage(m *message.Message) error
		// WriteMessage writes the message as json to the connection.
		WriteMessage(m message.Message) error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The
		// connection is NOT closed.
		WriteClose(reason string) error
		// IsNormalClose determines if the error is a normal close of the
		// connection rather than a failure.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
		// Close closes the connection.
		Close() error
	}
)
