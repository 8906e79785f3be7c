// Package cyclestore persists company season cycles and their append-only
// status history.
package cyclestore

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

// ErrDuplicateCycle is returned when the (company, season) pair already has a cycle.
var ErrDuplicateCycle = errors.New("a cycle already exists for this company and season")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("company_season_cycles")}
}

// Create inserts c. Uniqueness of (company_id, season_id) is enforced by
// the uniq_cycles_company_season index, never by a pre-check.
func (s *Store) Create(ctx context.Context, c models.CompanySeasonCycle) (models.CompanySeasonCycle, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CompanySeasonCycle{}, ErrDuplicateCycle
		}
		return models.CompanySeasonCycle{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CompanySeasonCycle, error) {
	var c models.CompanySeasonCycle
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.CompanySeasonCycle{}, err
	}
	return c, nil
}

// SetStatus moves the cycle to status. Callers pair it with a history
// append inside one transaction.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status models.CycleStatus, at time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter narrows List. Nil or empty fields match everything.
type ListFilter struct {
	SeasonID  *primitive.ObjectID
	CompanyID *primitive.ObjectID
	OwnerID   *primitive.ObjectID
	Status    models.CycleStatus
}

func (f ListFilter) toBSON() bson.M {
	q := bson.M{}
	if f.SeasonID != nil {
		q["season_id"] = *f.SeasonID
	}
	if f.CompanyID != nil {
		q["company_id"] = *f.CompanyID
	}
	if f.OwnerID != nil {
		q["owner_user_id"] = *f.OwnerID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

// List returns cycles most recently updated first plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.CompanySeasonCycle, int64, error) {
	q := f.toBSON()
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.CompanySeasonCycle{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// IDs returns the ids of every cycle matching f.
func (s *Store) IDs(ctx context.Context, f ListFilter) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, f.toBSON(), options.Find().SetProjection(bson.M{"_id": 1}))
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

func (s *Store) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DueFollowUps returns up to limit owned cycles whose follow-up date has
// passed and whose owner has not been reminded since that date.
func (s *Store) DueFollowUps(ctx context.Context, now time.Time, limit int64) ([]models.CompanySeasonCycle, error) {
	filter := bson.M{
		"owner_user_id":     bson.M{"$exists": true},
		"next_follow_up_at": bson.M{"$lte": now},
		"$or": bson.A{
			bson.M{"follow_up_notified_at": bson.M{"$exists": false}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$follow_up_notified_at", "$next_follow_up_at"}}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "next_follow_up_at", Value: 1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CompanySeasonCycle
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkFollowUpNotified stamps the reminder time on ids.
func (s *Store) MarkFollowUpNotified(ctx context.Context, ids []primitive.ObjectID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{"follow_up_notified_at": at}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
