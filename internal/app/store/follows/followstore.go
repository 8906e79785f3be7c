// internal/app/store/follows/followstore.go
package followstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyFollowing is returned when the student already follows the company.
var ErrAlreadyFollowing = errors.New("already following this company")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("student_company_follows")}
}

func (s *Store) Create(ctx context.Context, f models.Follow) (models.Follow, error) {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Follow{}, ErrAlreadyFollowing
		}
		return models.Follow{}, err
	}
	return f, nil
}

// Delete removes the (student, company) follow and returns the count removed.
func (s *Store) Delete(ctx context.Context, studentID, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"student_id": studentID, "company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByStudent returns the companies a student follows, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Follow, error) {
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Follow{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FollowerIDs returns the student ids following companyID.
func (s *Store) FollowerIDs(ctx context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID},
		options.Find().SetProjection(bson.M{"student_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		StudentID primitive.ObjectID `bson:"student_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.StudentID
	}
	return ids, nil
}

func (s *Store) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
