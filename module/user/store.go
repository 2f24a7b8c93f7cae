package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ChatRelay/module/user/model"
)

const collection = "users"

// Store is the mongo-backed account repository.
type Store struct {
	db func() *mongo.Database
}

// NewStore takes a database accessor instead of a database handle so the
// store survives reconnects of the async mongo manager.
func NewStore(db func() *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) coll() *mongo.Collection {
	return s.db().Collection(collection)
}

func (s *Store) Create(ctx context.Context, u *model.User) (string, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := s.coll().InsertOne(ctx, u)
	if err != nil {
		return "", errors.Wrap(err, "insert user")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	u.ID = oid
	return oid.Hex(), nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.coll().FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Wrap(err, "bad user id")
	}
	var u model.User
	if err := s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUsername renames the account and returns the updated record.
func (s *Store) UpdateUsername(ctx context.Context, id, newUsername string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Wrap(err, "bad user id")
	}
	var u model.User
	err = s.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"username": newUsername, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.Wrap(err, "bad user id")
	}
	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns every account as {_id, username}.
func (s *Store) List(ctx context.Context) ([]model.PublicUser, error) {
	cur, err := s.coll().Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []model.PublicUser
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
