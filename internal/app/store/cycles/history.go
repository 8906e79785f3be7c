package cyclestore

import (
	"context"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryStore is the append-only status history. It has no update path;
// rows leave only when their company is deleted.
type HistoryStore struct {
	c *mongo.Collection
}

func NewHistory(db *mongo.Database) *HistoryStore {
	return &HistoryStore{c: db.Collection("company_season_status_history")}
}

func (s *HistoryStore) Append(ctx context.Context, h models.StatusHistory) (models.StatusHistory, error) {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.StatusHistory{}, err
	}
	return h, nil
}

// Page returns one page of a cycle's history, most recent first. Ties on
// changed_at are broken by _id so pages are stable.
func (s *HistoryStore) Page(ctx context.Context, cycleID primitive.ObjectID, skip, limit int64) ([]models.StatusHistory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"cycle_id": cycleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.StatusHistory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HistoryStore) Count(ctx context.Context, cycleID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"cycle_id": cycleID})
}

// DeleteByCycles removes the history of the given cycles (company cascade only).
func (s *HistoryStore) DeleteByCycles(ctx context.Context, cycleIDs []primitive.ObjectID) (int64, error) {
	if len(cycleIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"cycle_id": bson.M{"$in": cycleIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
