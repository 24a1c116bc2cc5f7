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
)

// Field names match the documents written by the previous registration
// system so existing collections can be reused as-is.
const userCollection = "users"

type userDocument struct {
	ID                bson.ObjectID   `bson:"_id,omitempty"`
	Username          string          `bson:"username"`
	Email             string          `bson:"email"`
	Phone             string          `bson:"phone"`
	Password          string          `bson:"password"`
	RegisteredCourses []bson.ObjectID `bson:"registeredCourses"`
	CreatedAt         time.Time       `bson:"createdAt,omitempty"`
	UpdatedAt         time.Time       `bson:"updatedAt,omitempty"`
}

func (d *userDocument) toModel() *model.User {
	courses := make([]string, len(d.RegisteredCourses))
	for i, id := range d.RegisteredCourses {
		courses[i] = id.Hex()
	}
	return &model.User{
		ID:                d.ID.Hex(),
		Username:          d.Username,
		Email:             d.Email,
		Phone:             d.Phone,
		PasswordHash:      d.Password,
		RegisteredCourses: courses,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// MongoUserRepository stores users in the "users" collection.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository ensures the unique email index and returns the repository.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	coll := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("creating user indexes: %w", err)
	}

	return &MongoUserRepository{coll: coll}, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		Username:          user.Username,
		Email:             user.Email,
		Phone:             user.Phone,
		Password:          user.PasswordHash,
		RegisteredCourses: []bson.ObjectID{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}

	user.ID = objectID.Hex()
	user.RegisteredCourses = []string{}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) Save(ctx context.Context, user *model.User) error {
	objectID, err := bson.ObjectIDFromHex(user.ID)
	if err != nil {
		return ErrUserNotFound
	}

	courses, err := objectIDs(user.RegisteredCourses)
	if err != nil {
		return err
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"registeredCourses": courses, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) AddCourse(ctx context.Context, userID, courseID string, unique bool) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}
	cid, err := bson.ObjectIDFromHex(courseID)
	if err != nil {
		return ErrCourseNotFound
	}

	filter := bson.M{"_id": uid}
	if unique {
		filter["registeredCourses"] = bson.M{"$ne": cid}
	}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"registeredCourses": cid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	if !unique {
		return ErrUserNotFound
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return ErrAlreadyEnrolled
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func objectIDs(hexIDs []string) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, len(hexIDs))
	for i, h := range hexIDs {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid object id %q: %w", h, err)
		}
		ids[i] = id
	}
	return ids, nil
}
