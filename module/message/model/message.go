package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one relayed chat message as persisted. File is the
// generated attachment reference, nil when the message was text only.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    string             `bson:"sender" json:"sender"`
	To        string             `bson:"to" json:"to"`
	Text      string             `bson:"text,omitempty" json:"text"`
	File      *string            `bson:"file" json:"file"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
