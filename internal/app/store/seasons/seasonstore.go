package seasonstore

import (
	"context"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("recruitment_seasons")}
}

func (s *Store) Create(ctx context.Context, rs models.RecruitmentSeason) (models.RecruitmentSeason, error) {
	if rs.ID.IsZero() {
		rs.ID = primitive.NewObjectID()
	}
	if rs.CreatedAt.IsZero() {
		rs.CreatedAt = time.Now().UTC()
	}
	rs.UpdatedAt = rs.CreatedAt
	if _, err := s.c.InsertOne(ctx, rs); err != nil {
		return models.RecruitmentSeason{}, err
	}
	return rs, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.RecruitmentSeason, error) {
	var rs models.RecruitmentSeason
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rs); err != nil {
		return models.RecruitmentSeason{}, err
	}
	return rs, nil
}

// List returns every season, newest first.
func (s *Store) List(ctx context.Context) ([]models.RecruitmentSeason, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.RecruitmentSeason{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
