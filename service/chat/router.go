package chat

import (
	"context"
	"encoding/json"
	"time"

	"ChatRelay/logger"
)

// InlineFile is a binary attachment inlined into a message envelope as a
// data URI.
type InlineFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Envelope is the inbound message payload.
type Envelope struct {
	To   string      `json:"to"`
	Text string      `json:"text"`
	File *InlineFile `json:"file"`
}

// StoredMessage is the durable record the router hands to the store.
type StoredMessage struct {
	Sender    string
	To        string
	Text      string
	File      *string
	CreatedAt time.Time
}

// MessageStore persists routed messages. The hex id of the stored record
// is echoed back to the recipient as `_id`.
type MessageStore interface {
	Create(ctx context.Context, m *StoredMessage) (string, error)
}

const persistTimeout = 5 * time.Second

// Route handles one inbound message event: validate, ingest the optional
// attachment, persist, and forward to every live connection of the
// recipient. The sender never gets an acknowledgment or an error frame.
func (s *Server) Route(c *Conn, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		sample := raw
		if len(sample) > 256 {
			sample = sample[:256]
		}
		logger.Infof("[route] bad envelope conn=%s err=%v sample=%q", c.ID, err, sample)
		return
	}

	// missing recipient or empty body: silent drop
	if env.To == "" || (env.Text == "" && env.File == nil) {
		return
	}

	var file *string
	if env.File != nil {
		name := s.ingest.Ingest(env.File)
		file = &name
	}

	msg := &StoredMessage{
		Sender:    c.Identity().ID,
		To:        env.To,
		Text:      env.Text,
		File:      file,
		CreatedAt: s.now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	id, err := s.store.Create(ctx, msg)
	cancel()
	if err != nil {
		// forwarding proceeds independently; the recipient just sees an
		// empty _id for a message that may never reach history
		logger.Errorf("[route] persist failed sender=%s to=%s: %v", msg.Sender, msg.To, err)
		id = ""
	}

	frame := BuildMessageFrame(msg, id)
	for _, rc := range s.reg.FindByUser(env.To) {
		if err := rc.Send(frame); err != nil {
			logger.Infof("[route] forward failed to=%s conn=%s: %v", env.To, rc.ID, err)
		}
	}
}
