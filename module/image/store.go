package image

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ChatRelay/module/image/model"
)

const collection = "images"

type Store struct {
	db func() *mongo.Database
}

func NewStore(db func() *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) coll() *mongo.Collection {
	return s.db().Collection(collection)
}

func (s *Store) Create(ctx context.Context, img *model.Image) (string, error) {
	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now
	res, err := s.coll().InsertOne(ctx, img)
	if err != nil {
		return "", errors.Wrap(err, "insert image")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	img.ID = oid
	return oid.Hex(), nil
}

func (s *Store) FindBySender(ctx context.Context, sender string) (*model.Image, error) {
	var img model.Image
	if err := s.coll().FindOne(ctx, bson.M{"sender": sender}).Decode(&img); err != nil {
		return nil, err
	}
	return &img, nil
}

// ReplaceImage swaps the stored filename on the sender's existing record.
func (s *Store) ReplaceImage(ctx context.Context, sender, filename string) (*model.Image, error) {
	img, err := s.FindBySender(ctx, sender)
	if err != nil {
		return nil, err
	}
	_, err = s.coll().UpdateOne(ctx,
		bson.M{"_id": img.ID},
		bson.M{"$set": bson.M{"image": filename, "updatedAt": time.Now()}})
	if err != nil {
		return nil, err
	}
	img.Image = filename
	return img, nil
}

func (s *Store) List(ctx context.Context) ([]model.Image, error) {
	cur, err := s.coll().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []model.Image
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
