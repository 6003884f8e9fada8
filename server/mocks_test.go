package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/kmelnikov/scrabbled/server/message"
	"github.com/kmelnikov/scrabbled/server/socket"
)

type mockConn struct {
	socket.Conn
	remoteAddr net.Addr
}

func (c mockConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

func (c mockConn) Close() error {
	return nil
}

func (c mockConn) ReadMessage(m *message.Message) error {
	return fmt.Errorf("connection closed")
}

type mockUpgrader struct {
	upgradeErr error
}

func (u mockUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (socket.Conn, error) {
	if u.upgradeErr != nil {
		return nil, u.upgradeErr
	}
	return mockConn{}, nil
}

type mockConnectionHandler struct {
	mu      sync.Mutex
	handled []socket.Conn
}

func (h *mockConnectionHandler) Handle(ctx context.Context, conn socket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, conn)
}

func (h *mockConnectionHandler) handledConns() []socket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handled
}
