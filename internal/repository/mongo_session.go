package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/session"
)

const sessionCollection = "sessions"

type sessionDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// MongoSessionStore keeps sessions in the "sessions" collection. A TTL index
// lets MongoDB remove expired records on its own.
type MongoSessionStore struct {
	coll *mongo.Collection
}

func NewMongoSessionStore(ctx context.Context, db *mongo.Database) (*MongoSessionStore, error) {
	coll := db.Collection(sessionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("creating session indexes: %w", err)
	}

	return &MongoSessionStore{coll: coll}, nil
}

func (s *MongoSessionStore) Save(ctx context.Context, sess *model.Session) error {
	doc := sessionDocument{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Username:  sess.Username,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *MongoSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var doc sessionDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	return &model.Session{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Username:  doc.Username,
		Email:     doc.Email,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *MongoSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
