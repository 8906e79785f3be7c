package assignmentstore

import (
	"context"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryStore is the append-only reassignment trail.
type HistoryStore struct {
	c *mongo.Collection
}

func NewHistory(db *mongo.Database) *HistoryStore {
	return &HistoryStore{c: db.Collection("company_assignment_history")}
}

func (s *HistoryStore) Append(ctx context.Context, h models.AssignmentHistory) (models.AssignmentHistory, error) {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.AssignmentHistory{}, err
	}
	return h, nil
}

// List returns history rows most recent first. A nil assignmentID lists
// across all assignments.
func (s *HistoryStore) List(ctx context.Context, assignmentID *primitive.ObjectID, skip, limit int64) ([]models.AssignmentHistory, error) {
	q := bson.M{}
	if assignmentID != nil {
		q["assignment_id"] = *assignmentID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.AssignmentHistory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByAssignments removes the trail of the given assignments.
func (s *HistoryStore) DeleteByAssignments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"assignment_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
