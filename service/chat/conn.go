package chat

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/gorilla/websocket"

	"ChatRelay/tools/security"
)

const writeWait = 5 * time.Second

var errTransportClosed = errors.New("transport closed")

// Transport is the bidirectional pipe under a Conn. The protocol logic
// only ever talks to this interface, so tests can drive it with fakes.
type Transport interface {
	WriteJSON(v any) error
	Ping() error
	Close() error
	Open() bool
}

// Conn is one live client connection. It is owned by the Registry from
// Register until Unregister; the heartbeat only holds timers scoped to it.
type Conn struct {
	ID string // connection id, unique within this node

	tr Transport
	hb *heartbeat

	mu    sync.RWMutex
	ident security.Identity // zero until the handshake credential verifies
}

func newConn(id string, tr Transport) *Conn {
	return &Conn{ID: id, tr: tr}
}

func (c *Conn) Identity() security.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ident
}

func (c *Conn) SetIdentity(ident security.Identity) {
	c.mu.Lock()
	c.ident = ident
	c.mu.Unlock()
}

// UpdateIdentity refreshes the cached username and notifies this
// connection (and only this one) with an updateUsername frame.
func (c *Conn) UpdateIdentity(newUsername string) {
	c.mu.Lock()
	c.ident.Username = newUsername
	id := c.ident.ID
	c.mu.Unlock()

	_ = c.Send(BuildUsernameFrame(id, newUsername))
}

// Send writes a frame if the transport is still open. Sends to non-open
// transports are skipped without raising an error.
func (c *Conn) Send(v any) error {
	if !c.tr.Open() {
		return nil
	}
	return c.tr.WriteJSON(v)
}

func (c *Conn) Open() bool { return c.tr.Open() }

// ===== gorilla-backed transport =====

type wsTransport struct {
	mu   sync.Mutex // gorilla allows a single concurrent writer
	ws   *websocket.Conn
	open bool
}

func newWSTransport(ws *websocket.Conn) *wsTransport {
	return &wsTransport{ws: ws, open: true}
}

func (t *wsTransport) WriteJSON(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return errTransportClosed
	}
	_ = t.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.ws.WriteJSON(v); err != nil {
		t.open = false
		return err
	}
	return nil
}

func (t *wsTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return errTransportClosed
	}
	return t.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
}

func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil
	}
	t.open = false
	return t.ws.Close()
}

func (t *wsTransport) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}
