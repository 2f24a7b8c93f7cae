package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastServer(dir string) *Server {
	return NewServer(Conf{
		Heartbeat: HeartbeatConf{PingInterval: 30 * time.Millisecond, PongWait: 20 * time.Millisecond},
		UploadDir: dir,
	}, &memStore{})
}

func TestSilentConnectionIsEvicted(t *testing.T) {
	req := require.New(t)
	s := fastServer(t.TempDir())

	observer, ftObs := registerIdentified(s, "c1", "u1", "alice")
	stop := pongEvery(observer, 10*time.Millisecond)
	defer stop()

	_, ftDead := registerIdentified(s, "c2", "u2", "bob")
	// bob never pongs

	require.Eventually(t, func() bool { return s.Registry().Len() == 1 },
		time.Second, 5*time.Millisecond)

	req.False(ftDead.Open())
	req.GreaterOrEqual(ftDead.PingCount(), 1)

	// exactly one reduced-count snapshot: register self, register bob, evict bob
	require.Eventually(t, func() bool {
		sizes := ftObs.presenceSizes()
		return len(sizes) == 3 && sizes[2] == 1
	}, time.Second, 5*time.Millisecond)
	req.Equal([]int{1, 2, 1}, ftObs.presenceSizes())
}

func TestPongingConnectionSurvives(t *testing.T) {
	req := require.New(t)
	s := fastServer(t.TempDir())

	conn, ft := registerIdentified(s, "c1", "u1", "alice")
	stop := pongEvery(conn, 10*time.Millisecond)
	defer stop()

	require.Eventually(t, func() bool { return ft.PingCount() >= 5 },
		2*time.Second, 5*time.Millisecond)

	req.Equal(1, s.Registry().Len())
	req.True(ft.Open())
	// a pong never disturbs the ping schedule, only the death timer
	req.Equal([]int{1}, ft.presenceSizes())
}

func TestCloseCancelsTimers(t *testing.T) {
	req := require.New(t)
	s := fastServer(t.TempDir())

	conn, ft := registerIdentified(s, "c1", "u1", "alice")
	s.Unregister(conn, "client close")

	req.Equal(0, s.Registry().Len())
	pings := ft.PingCount()

	// long enough for several ping periods and a death timeout
	time.Sleep(150 * time.Millisecond)
	req.Equal(pings, ft.PingCount())
	req.Equal(0, s.Registry().Len())
}

func TestBeatCallbackFiresEachTickUntilStop(t *testing.T) {
	req := require.New(t)
	c := newConn("c1", newFakeTransport())

	var mu sync.Mutex
	beats := 0
	h := newHeartbeat(c, HeartbeatConf{PingInterval: 20 * time.Millisecond, PongWait: time.Hour}, func(*Conn) {})
	h.onBeat = func(*Conn) {
		mu.Lock()
		beats++
		mu.Unlock()
	}
	h.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return beats >= 3
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	mu.Lock()
	n := beats
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	req.LessOrEqual(beats, n+1) // at most one beat already in flight at Stop
}

func TestLatePongAfterEvictionIsHarmless(t *testing.T) {
	req := require.New(t)
	s := fastServer(t.TempDir())

	conn, _ := registerIdentified(s, "c1", "u1", "alice")

	require.Eventually(t, func() bool { return s.Registry().Len() == 0 },
		time.Second, 5*time.Millisecond)

	conn.hb.Pong() // arrives after the death timer already fired
	time.Sleep(50 * time.Millisecond)
	req.Equal(0, s.Registry().Len())
}
