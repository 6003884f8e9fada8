package registry

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/kmelnikov/scrabbled/server/message"
)

// mockAddr implements the net.Addr interface.
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

// mockConn implements the socket.Conn interface.  Reads are fed through a
// channel so a test can act as the client; writes are collected on another
// channel.
type mockConn struct {
	reads     chan message.Message
	writes    chan message.Message
	closed    chan struct{}
	closeOnce sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		reads:  make(chan message.Message),
		writes: make(chan message.Message, 64),
		closed: make(chan struct{}),
	}
}

// send acts as the remote client writing a frame.
func (c *mockConn) send(m message.Message) {
	select {
	case c.reads <- m:
	case <-c.closed:
	}
}

func (c *mockConn) ReadMessage(m *message.Message) error {
	select {
	case read := <-c.reads:
		*m = read
		return nil
	case <-c.closed:
		return fmt.Errorf("connection closed")
	}
}

func (c *mockConn) WriteMessage(m message.Message) error {
	select {
	case <-c.closed:
		return fmt.Errorf("connection closed")
	default:
	}
	c.writes <- m
	return nil
}

func (c *mockConn) WritePing() error {
	return nil
}

func (c *mockConn) WriteClose(reason string) error {
	return nil
}

func (c *mockConn) IsNormalClose(err error) bool {
	return false
}

func (c *mockConn) RemoteAddr() net.Addr {
	return mockAddr("mock")
}

func (c *mockConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

// mockHandler implements the Handler interface, recording lifecycle calls.
type mockHandler struct {
	PlayerConnectedFunc func(ctx context.Context, k Key) ([]message.Message, error)
	mu                  sync.Mutex
	disconnected        []Key
	handled             []message.Message
}

func (h *mockHandler) PlayerConnected(ctx context.Context, k Key) ([]message.Message, error) {
	if h.PlayerConnectedFunc != nil {
		return h.PlayerConnectedFunc(ctx, k)
	}
	return nil, nil
}

func (h *mockHandler) PlayerDisconnected(ctx context.Context, k Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, k)
}

func (h *mockHandler) HandleMessage(ctx context.Context, k Key, m message.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, m)
}

func (h *mockHandler) disconnectedKeys() []Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]Key, len(h.disconnected))
	copy(keys, h.disconnected)
	return keys
}

func (h *mockHandler) handledMessages() []message.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	messages := make([]message.Message, len(h.handled))
	copy(messages, h.handled)
	return messages
}
