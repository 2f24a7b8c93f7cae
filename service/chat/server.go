package chat

import (
	"time"

	"ChatRelay/logger"
	online "ChatRelay/service/storage"
	"ChatRelay/tools/security"
)

// Conf carries everything the relay server needs at runtime.
type Conf struct {
	Heartbeat   HeartbeatConf
	JWT         security.Options
	UploadDir   string
	PresenceTTL time.Duration // TTL on the redis presence mirror
}

func (c *Conf) norm() {
	c.Heartbeat.norm()
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 30 * time.Second
	}
}

// Server owns the registry and wires the heartbeat, presence, routing and
// ingestion pieces together. All components reach the registry through
// this one owner; there is no free-floating global state.
type Server struct {
	conf   Conf
	reg    *Registry
	store  MessageStore
	ingest *Ingestor
	now    func() time.Time
}

func NewServer(conf Conf, store MessageStore) *Server {
	conf.norm()
	return &Server{
		conf:   conf,
		reg:    NewRegistry(),
		store:  store,
		ingest: NewIngestor(conf.UploadDir),
		now:    time.Now,
	}
}

func (s *Server) Registry() *Registry { return s.reg }

// Register inserts the connection, starts its liveness protocol and
// pushes a fresh presence snapshot to everyone.
func (s *Server) Register(c *Conn) {
	c.hb = newHeartbeat(c, s.conf.Heartbeat, s.evict)
	// each ping tick renews the mirror key so its TTL outlives
	// long-running connections
	c.hb.onBeat = s.mirrorOnline
	s.reg.Add(c)
	c.hb.Start()
	s.mirrorOnline(c)
	s.BroadcastPresence()
}

// Unregister removes the connection, cancels its timers, closes the
// transport and broadcasts the reduced snapshot. The close path and the
// eviction path may race; whichever loses the registry removal is a no-op.
func (s *Server) Unregister(c *Conn, reason string) {
	if !s.reg.Remove(c) {
		return
	}
	c.hb.Stop()
	_ = c.tr.Close()
	s.mirrorOffline(c)
	logger.Infof("[chat] unregister conn=%s user=%s reason=%s", c.ID, c.Identity().ID, reason)
	s.BroadcastPresence()
}

// evict is the heartbeat's dead-connection callback.
func (s *Server) evict(c *Conn) {
	logger.Warnf("[chat] heartbeat timeout conn=%s user=%s", c.ID, c.Identity().ID)
	s.Unregister(c, "heartbeat timeout")
}

// BroadcastPresence pushes the current snapshot to every open connection.
// Best effort: non-open transports are skipped, never retried.
func (s *Server) BroadcastPresence() {
	frame := BuildPresenceFrame(s.reg.Snapshot())
	for _, c := range s.reg.All() {
		if err := c.Send(frame); err != nil {
			logger.Infof("[chat] presence push failed conn=%s: %v", c.ID, err)
		}
	}
}

// The redis mirror is advisory. Errors are logged and swallowed; the
// in-memory registry is the source of truth.

func (s *Server) mirrorOnline(c *Conn) {
	if !online.Enabled() {
		return
	}
	if id := c.Identity().ID; id != "" {
		if err := online.PresenceOnline(id, c.ID, s.conf.PresenceTTL); err != nil {
			logger.Infof("[chat] presence mirror online user=%s: %v", id, err)
		}
	}
}

func (s *Server) mirrorOffline(c *Conn) {
	if !online.Enabled() {
		return
	}
	if id := c.Identity().ID; id != "" {
		if err := online.PresenceOffline(id); err != nil {
			logger.Infof("[chat] presence mirror offline user=%s: %v", id, err)
		}
	}
}
