package chat

import "time"

// Outbound frame shapes. Field names are part of the client contract.

const FrameTypeUpdateUsername = "updateUsername"

// PresenceFrame carries a full presence snapshot.
type PresenceFrame struct {
	Online []PresenceEntry `json:"online"`
}

// UsernameFrame is the self-notification sent to a connection whose
// identity was renamed.
type UsernameFrame struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessageFrame is a relayed chat message as the recipient sees it.
type MessageFrame struct {
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	To        string    `json:"to"`
	File      *string   `json:"file"`
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"_id"`
}

func BuildPresenceFrame(snap []PresenceEntry) PresenceFrame {
	return PresenceFrame{Online: snap}
}

func BuildUsernameFrame(id, username string) UsernameFrame {
	return UsernameFrame{Type: FrameTypeUpdateUsername, ID: id, Username: username}
}

func BuildMessageFrame(m *StoredMessage, persistedID string) MessageFrame {
	return MessageFrame{
		Text:      m.Text,
		Sender:    m.Sender,
		To:        m.To,
		File:      m.File,
		CreatedAt: m.CreatedAt,
		ID:        persistedID,
	}
}
