package chat

import (
	"sync"
	"time"

	"ChatRelay/logger"
	"ChatRelay/tools/safe"
)

// HeartbeatConf controls the liveness protocol timing.
type HeartbeatConf struct {
	PingInterval time.Duration // repeating ping period
	PongWait     time.Duration // how long a ping may go unanswered
}

func (c *HeartbeatConf) norm() {
	if c.PingInterval <= 0 {
		c.PingInterval = 5 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = time.Second
	}
}

type hbState int

const (
	hbAlive hbState = iota
	hbAwaitingPong
	hbDead // terminal
)

// heartbeat drives the per-connection state machine
// Alive -> AwaitingPong -> {Alive on pong | Dead on timeout}.
// The ticker keeps its original schedule: a pong only cancels the
// pending death timer, it never re-arms the ping period.
type heartbeat struct {
	conf   HeartbeatConf
	conn   *Conn
	onDead func(*Conn)
	onBeat func(*Conn) // optional, fired once per ping tick off the loop goroutine

	mu    sync.Mutex
	state hbState
	death *time.Timer

	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newHeartbeat(conn *Conn, conf HeartbeatConf, onDead func(*Conn)) *heartbeat {
	conf.norm()
	return &heartbeat{
		conf:   conf,
		conn:   conn,
		onDead: onDead,
		stopCh: make(chan struct{}),
	}
}

func (h *heartbeat) Start() {
	h.ticker = time.NewTicker(h.conf.PingInterval)
	go h.loop()
}

func (h *heartbeat) loop() {
	for {
		select {
		case <-h.stopCh:
			return
		case <-h.ticker.C:
			h.ping()
			if cb := h.onBeat; cb != nil {
				// off the loop goroutine so a slow observer cannot
				// delay the next ping
				safe.Go(func() { cb(h.conn) })
			}
		}
	}
}

func (h *heartbeat) ping() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == hbDead {
		return
	}
	if err := h.conn.tr.Ping(); err != nil {
		// the death timer below evicts the connection anyway
		logger.Infof("[hb] ping failed conn=%s: %v", h.conn.ID, err)
	}
	h.state = hbAwaitingPong
	if h.death == nil { // at most one pending death timer
		h.death = time.AfterFunc(h.conf.PongWait, h.expire)
	}
}

// Pong cancels the pending death timer and returns to Alive.
func (h *heartbeat) Pong() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.death != nil {
		h.death.Stop()
		h.death = nil
	}
	if h.state == hbAwaitingPong {
		h.state = hbAlive
	}
}

// expire fires when a ping went unanswered past PongWait.
func (h *heartbeat) expire() {
	h.mu.Lock()
	if h.state != hbAwaitingPong {
		// a pong or a close beat the timer
		h.mu.Unlock()
		return
	}
	h.state = hbDead
	h.death = nil
	h.mu.Unlock()

	h.Stop()
	h.onDead(h.conn)
}

// Stop cancels the ticker and any pending death timer. Safe to call from
// both the close path and the eviction path.
func (h *heartbeat) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.ticker != nil {
			h.ticker.Stop()
		}
	})
	h.mu.Lock()
	if h.death != nil {
		h.death.Stop()
		h.death = nil
	}
	h.state = hbDead
	h.mu.Unlock()
}
