package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ChatRelay/tools/security"
)

// fakeTransport records everything the server pushes through it.
type fakeTransport struct {
	mu     sync.Mutex
	open   bool
	frames []any
	pings  int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{open: true}
}

func (t *fakeTransport) WriteJSON(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return errTransportClosed
	}
	t.frames = append(t.frames, v)
	return nil
}

func (t *fakeTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return errTransportClosed
	}
	t.pings++
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	return nil
}

func (t *fakeTransport) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *fakeTransport) Frames() []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]any, len(t.frames))
	copy(out, t.frames)
	return out
}

func (t *fakeTransport) PingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pings
}

func (t *fakeTransport) presenceSizes() []int {
	var out []int
	for _, f := range t.Frames() {
		if pf, ok := f.(PresenceFrame); ok {
			out = append(out, len(pf.Online))
		}
	}
	return out
}

func (t *fakeTransport) messageFrames() []MessageFrame {
	var out []MessageFrame
	for _, f := range t.Frames() {
		if mf, ok := f.(MessageFrame); ok {
			out = append(out, mf)
		}
	}
	return out
}

func (t *fakeTransport) usernameFrames() []UsernameFrame {
	var out []UsernameFrame
	for _, f := range t.Frames() {
		if uf, ok := f.(UsernameFrame); ok {
			out = append(out, uf)
		}
	}
	return out
}

// memStore is an in-memory MessageStore.
type memStore struct {
	mu   sync.Mutex
	msgs []StoredMessage
	fail bool
}

func (s *memStore) Create(_ context.Context, m *StoredMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", fmt.Errorf("store unreachable")
	}
	s.msgs = append(s.msgs, *m)
	return fmt.Sprintf("msg-%04d", len(s.msgs)), nil
}

func (s *memStore) All() []StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func ident(id, username string) security.Identity {
	return security.Identity{ID: id, Username: username}
}

// newTestServer builds a server whose heartbeat is effectively disabled,
// for tests that only exercise registry/routing behavior.
func newTestServer(dir string, store MessageStore) *Server {
	return NewServer(Conf{
		Heartbeat: HeartbeatConf{PingInterval: time.Hour, PongWait: time.Hour},
		UploadDir: dir,
	}, store)
}

func registerIdentified(s *Server, connID, userID, username string) (*Conn, *fakeTransport) {
	ft := newFakeTransport()
	c := newConn(connID, ft)
	if userID != "" {
		c.SetIdentity(ident(userID, username))
	}
	s.Register(c)
	return c, ft
}

// pongEvery keeps a connection alive by acknowledging pings until the
// returned stop func runs.
func pongEvery(c *Conn, every time.Duration) func() {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				c.hb.Pong()
			}
		}
	}()
	return func() { close(done) }
}
