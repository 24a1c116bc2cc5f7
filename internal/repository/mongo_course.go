package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/coursereg/coursereg-go/internal/model"
)

const courseCollection = "courses"

type courseDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Code        string        `bson:"code"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Credits     int           `bson:"credits"`
	Instructor  string        `bson:"instructor"`
	Schedule    string        `bson:"schedule"`
	Capacity    int           `bson:"capacity"`
	Enrolled    int           `bson:"enrolled"`
}

func (d *courseDocument) toModel() model.Course {
	return model.Course{
		ID:          d.ID.Hex(),
		Code:        d.Code,
		Title:       d.Title,
		Description: d.Description,
		Credits:     d.Credits,
		Instructor:  d.Instructor,
		Schedule:    d.Schedule,
		Capacity:    d.Capacity,
		Enrolled:    d.Enrolled,
	}
}

func courseToDocument(c model.Course) courseDocument {
	return courseDocument{
		Code:        c.Code,
		Title:       c.Title,
		Description: c.Description,
		Credits:     c.Credits,
		Instructor:  c.Instructor,
		Schedule:    c.Schedule,
		Capacity:    c.Capacity,
		Enrolled:    c.Enrolled,
	}
}

// MongoCourseRepository stores the catalog in the "courses" collection.
type MongoCourseRepository struct {
	coll *mongo.Collection
}

// NewMongoCourseRepository ensures the unique code index and returns the repository.
func NewMongoCourseRepository(ctx context.Context, db *mongo.Database) (*MongoCourseRepository, error) {
	coll := db.Collection(courseCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("creating course indexes: %w", err)
	}

	return &MongoCourseRepository{coll: coll}, nil
}

func (r *MongoCourseRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

func (r *MongoCourseRepository) InsertMany(ctx context.Context, courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}

	docs := make([]any, len(courses))
	for i, c := range courses {
		docs[i] = courseToDocument(c)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *MongoCourseRepository) List(ctx context.Context) ([]model.Course, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []model.Course{}
	for cursor.Next(ctx) {
		var doc courseDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		courses = append(courses, doc.toModel())
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *MongoCourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	var doc courseDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	course := doc.toModel()
	return &course, nil
}

func (r *MongoCourseRepository) Save(ctx context.Context, course *model.Course) error {
	objectID, err := bson.ObjectIDFromHex(course.ID)
	if err != nil {
		return ErrCourseNotFound
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"enrolled": course.Enrolled}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *MongoCourseRepository) ReserveSeat(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrCourseNotFound
	}

	filter := bson.M{
		"_id":   objectID,
		"$expr": bson.M{"$lt": bson.A{"$enrolled", "$capacity"}},
	}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"enrolled": 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCourseNotFound
	}
	return ErrNoSeatsLeft
}

func (r *MongoCourseRepository) ReleaseSeat(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrCourseNotFound
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": objectID, "enrolled": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"enrolled": -1}},
	)
	return err
}
