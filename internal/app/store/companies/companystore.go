// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateSlug is returned when another company already uses the slug.
var ErrDuplicateSlug = errors.New("a company with this slug already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("companies")}
}

func (s *Store) Create(ctx context.Context, c models.Company) (models.Company, error) {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.NameCI = text.Fold(c.Name)
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Company{}, ErrDuplicateSlug
		}
		return models.Company{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	var c models.Company
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// Update writes the mutable fields of c back by id.
func (s *Store) Update(ctx context.Context, c models.Company) error {
	set := bson.M{
		"name":       c.Name,
		"name_ci":    text.Fold(c.Name),
		"slug":       strings.ToLower(strings.TrimSpace(c.Slug)),
		"domain":     c.Domain,
		"industry":   c.Industry,
		"website":    c.Website,
		"notes":      c.Notes,
		"updated_at": c.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if c.Priority != nil {
		set["priority"] = *c.Priority
	} else {
		update["$unset"] = bson.M{"priority": ""}
	}
	res, err := s.c.UpdateByID(ctx, c.ID, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a company by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows List. Search is a case-insensitive prefix on name or domain.
type ListFilter struct {
	Search   string
	Industry string
}

// List returns companies newest first plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.Company, int64, error) {
	q := bson.M{}
	if lo, hi := text.PrefixRange(text.Fold(f.Search)); lo != "" {
		q["$or"] = []bson.M{
			{"name_ci": bson.M{"$gte": lo, "$lt": hi}},
			{"domain": bson.M{"$gte": lo, "$lt": hi}},
		}
	}
	if f.Industry != "" {
		q["industry"] = f.Industry
	}
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Company{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
