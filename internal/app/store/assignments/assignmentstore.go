// Package assignmentstore persists company/contact ownership assignments
// and the reassignment trail.
package assignmentstore

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
	return &Store{c: db.Collection("company_assignments")}
}

func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.AssignedAt
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// InsertMany writes every row in one ordered batch. Rows must carry their
// ids so a caller can compensate if the batch fails partway.
func (s *Store) InsertMany(ctx context.Context, rows []models.Assignment) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]any, len(rows))
	for i := range rows {
		docs[i] = rows[i]
	}
	_, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

// DeleteByIDs removes the given assignments.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Reassign points the assignment at a new assignee on behalf of by.
func (s *Store) Reassign(ctx context.Context, id, to, by primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"assignee_user_id": to,
		"assigned_by":      by,
		"updated_at":       at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	ItemType   models.ItemType
	ItemID     *primitive.ObjectID
	AssigneeID *primitive.ObjectID
	ActiveOnly bool
}

// List returns assignments newest first plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.Assignment, int64, error) {
	q := bson.M{}
	if f.ItemType != "" {
		q["item_type"] = f.ItemType
	}
	if f.ItemID != nil {
		q["item_id"] = *f.ItemID
	}
	if f.AssigneeID != nil {
		q["assignee_user_id"] = *f.AssigneeID
	}
	if f.ActiveOnly {
		q["is_active"] = true
	}
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "assigned_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// IDsByItems returns the ids of assignments on any of the given items.
func (s *Store) IDsByItems(ctx context.Context, itemType models.ItemType, itemIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"item_type": itemType, "item_id": bson.M{"$in": itemIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}
