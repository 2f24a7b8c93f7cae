package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// slowStore simulates a stalled persistence backend.
type slowStore struct {
	mu    sync.Mutex
	delay time.Duration
	msgs  []StoredMessage
}

func (s *slowStore) Create(_ context.Context, m *StoredMessage) (string, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, *m)
	return "slow-0001", nil
}

func (s *slowStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// A persist that outlasts several ping periods must not starve the read
// loop: pong frames are only dispatched from inside ReadMessage, so a
// routing stall on the read goroutine would get a live client evicted.
func TestSlowPersistDoesNotStarveHeartbeat(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)

	store := &slowStore{delay: 400 * time.Millisecond}
	s := NewServer(Conf{
		Heartbeat: HeartbeatConf{PingInterval: 50 * time.Millisecond, PongWait: 40 * time.Millisecond},
		UploadDir: t.TempDir(),
	}, store)

	r := gin.New()
	r.GET("/ws", s.HandleWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	defer ws.Close()

	// reading constantly lets gorilla's default ping handler answer
	// every server ping with a pong
	go func() {
		for {
			if _, _, rerr := ws.ReadMessage(); rerr != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return s.Registry().Len() == 1 },
		time.Second, 5*time.Millisecond)

	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte(`{"to":"u2","text":"hi"}`)))

	// several ping cycles elapse while the persist is still in flight;
	// the connection must survive all of them
	time.Sleep(300 * time.Millisecond)
	req.Equal(1, s.Registry().Len())

	require.Eventually(t, func() bool { return store.count() == 1 },
		2*time.Second, 10*time.Millisecond)
	req.Equal(1, s.Registry().Len())
}

func TestMessagesKeepArrivalOrderAcrossWorker(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)

	store := &memStore{}
	s := NewServer(Conf{
		Heartbeat: HeartbeatConf{PingInterval: time.Hour, PongWait: time.Hour},
		UploadDir: t.TempDir(),
	}, store)

	r := gin.New()
	r.GET("/ws", s.HandleWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	defer ws.Close()

	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte(`{"to":"u2","text":"first"}`)))
	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte(`{"to":"u2","text":"second"}`)))
	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte(`{"to":"u2","text":"third"}`)))

	require.Eventually(t, func() bool { return len(store.All()) == 3 },
		2*time.Second, 10*time.Millisecond)

	msgs := store.All()
	req.Equal("first", msgs[0].Text)
	req.Equal("second", msgs[1].Text)
	req.Equal("third", msgs[2].Text)
}
