package chat

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ChatRelay/logger"
	"ChatRelay/tools/ids"
	"ChatRelay/tools/safe"
	"ChatRelay/tools/security"
)

// inboxSize bounds how many envelopes may queue behind a slow persist
// before the read loop applies backpressure.
const inboxSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request, binds the session credential from the
// cookie, registers the connection and runs the read loop until the peer
// goes away (or the heartbeat declares it dead).
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	conn := newConn(ids.GenerateString(), newWSTransport(ws))

	// A missing or invalid credential is not a handshake rejection: the
	// connection stays open, anonymous and unroutable.
	if cookie, cerr := c.Request.Cookie("token"); cerr == nil && cookie.Value != "" {
		ident, verr := security.Verify(s.conf.JWT, cookie.Value)
		if verr != nil {
			logger.Infof("[ws] credential rejected conn=%s: %v", conn.ID, verr)
		} else {
			conn.SetIdentity(ident)
		}
	}

	s.Register(conn)

	// the pong handler runs on this goroutine, inside ReadMessage
	ws.SetPongHandler(func(string) error {
		conn.hb.Pong()
		return nil
	})
	ws.SetReadLimit(1 << 20) // 1MB

	// Routing runs on its own goroutine so a slow persist never blocks
	// ReadMessage: gorilla only dispatches pong frames from inside the
	// read call, and a starved read loop would miss pongs and get the
	// connection falsely evicted. One worker per connection keeps
	// messages in arrival order.
	inbox := make(chan []byte, inboxSize)
	safe.Go(func() {
		for data := range inbox {
			s.Route(conn, data)
		}
	})
	defer close(inbox)

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s err=%v", conn.ID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", conn.ID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", conn.ID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		inbox <- data
	}

	s.Unregister(conn, "transport closed")
}
