// internal/app/store/permissions/permissionstore.go
package permissionstore

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
	return &Store{c: db.Collection("user_permissions")}
}

// ListByUser returns every override recorded for userID, ordered by key.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.UserPermission{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert sets the override for (p.UserID, p.Key), replacing any prior value.
func (s *Store) Upsert(ctx context.Context, p models.UserPermission) error {
	if p.GrantedAt.IsZero() {
		p.GrantedAt = time.Now().UTC()
	}
	set := bson.M{"allowed": p.Allowed, "granted_at": p.GrantedAt}
	if p.GrantedBy != nil {
		set["granted_by"] = *p.GrantedBy
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": p.UserID, "key": p.Key},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": primitive.NewObjectID()}},
		options.Update().SetUpsert(true))
	return err
}
