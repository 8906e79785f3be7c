// Package notificationstore records in-app notifications. Delivery happens
// elsewhere; this store only keeps the rows users read.
package notificationstore

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
	return &Store{c: db.Collection("notifications")}
}

// InsertMany stores one notification per row.
func (s *Store) InsertMany(ctx context.Context, rows []models.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(rows))
	for i := range rows {
		if rows[i].ID.IsZero() {
			rows[i].ID = primitive.NewObjectID()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
		docs[i] = rows[i]
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// ListForUser returns the user's notifications newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error) {
	q := bson.M{"user_id": userID}
	if unreadOnly {
		q["is_read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags the listed notifications as read. Rows owned by other
// users are never touched.
func (s *Store) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
