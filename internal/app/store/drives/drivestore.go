// internal/app/store/drives/drivestore.go
package drivestore

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
	return &Store{c: db.Collection("drives")}
}

func (s *Store) Create(ctx context.Context, d models.Drive) (models.Drive, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Drive{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Drive, error) {
	var d models.Drive
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Drive{}, err
	}
	return d, nil
}

// Update writes the editable fields of d. The conflict flag is not among them.
func (s *Store) Update(ctx context.Context, d models.Drive) error {
	set := bson.M{
		"title":      d.Title,
		"stage":      d.Stage,
		"status":     d.Status,
		"venue":      d.Venue,
		"notes":      d.Notes,
		"updated_at": d.UpdatedAt,
	}
	unset := bson.M{}
	if d.StartAt != nil {
		set["start_at"] = *d.StartAt
	} else {
		unset["start_at"] = ""
	}
	if d.EndAt != nil {
		set["end_at"] = *d.EndAt
	} else {
		unset["end_at"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, d.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// HasOverlap reports whether a non-cancelled drive at venue has a window
// intersecting [start, end]. Touching endpoints count as overlap.
func (s *Store) HasOverlap(ctx context.Context, venue string, start, end time.Time) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"venue":    venue,
		"status":   bson.M{"$ne": models.DriveCancelled},
		"start_at": bson.M{"$lte": end},
		"end_at":   bson.M{"$gte": start},
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFilter narrows List. From/To bound start_at inclusively.
type ListFilter struct {
	From      *time.Time
	To        *time.Time
	Status    models.DriveStatus
	CompanyID *primitive.ObjectID
	CycleIDs  []primitive.ObjectID // nil means any cycle
}

// List returns drives with the latest start first, capped at limit.
func (s *Store) List(ctx context.Context, f ListFilter, limit int64) ([]models.Drive, error) {
	q := bson.M{}
	if f.From != nil || f.To != nil {
		r := bson.M{}
		if f.From != nil {
			r["$gte"] = *f.From
		}
		if f.To != nil {
			r["$lte"] = *f.To
		}
		q["start_at"] = r
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.CompanyID != nil {
		q["company_id"] = *f.CompanyID
	}
	if f.CycleIDs != nil {
		q["cycle_id"] = bson.M{"$in": f.CycleIDs}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Drive{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
