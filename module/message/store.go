package message

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ChatRelay/module/message/model"
	"ChatRelay/service/chat"
)

const collection = "messages"

// Store is the mongo message repository. It implements chat.MessageStore
// for the router's persistence step and adds the history query used by
// the REST side.
type Store struct {
	db func() *mongo.Database
}

func NewStore(db func() *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) coll() *mongo.Collection {
	return s.db().Collection(collection)
}

// Create persists a routed message and returns its hex id.
func (s *Store) Create(ctx context.Context, m *chat.StoredMessage) (string, error) {
	doc := model.Message{
		Sender:    m.Sender,
		To:        m.To,
		Text:      m.Text,
		File:      m.File,
		CreatedAt: m.CreatedAt,
	}
	res, err := s.coll().InsertOne(ctx, doc)
	if err != nil {
		return "", errors.Wrap(err, "insert message")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return oid.Hex(), nil
}

// Between returns every message exchanged between the two users, oldest
// first.
func (s *Store) Between(ctx context.Context, a, b string) ([]model.Message, error) {
	filter := bson.M{
		"sender": bson.M{"$in": []string{a, b}},
		"to":     bson.M{"$in": []string{a, b}},
	}
	cur, err := s.coll().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
