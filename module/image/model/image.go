package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a gallery record: a stored filename owned by a sender.
type Image struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    string             `bson:"sender" json:"sender"`
	Image     string             `bson:"image" json:"image"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
