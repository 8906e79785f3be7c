// internal/app/store/blogs/blogstore.go
package blogstore

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
	return &Store{c: db.Collection("blogs")}
}

func (s *Store) Create(ctx context.Context, b models.Blog) (models.Blog, error) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Blog{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Blog, error) {
	var b models.Blog
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.Blog{}, err
	}
	return b, nil
}

// Decision is what a moderator writes. Approving records who and when;
// rejecting records the note and clears any earlier approval.
type Decision struct {
	Status     models.ModerationStatus
	ApprovedBy *primitive.ObjectID
	Note       string
	At         time.Time
}

func (d Decision) toBSON() bson.M {
	set := bson.M{"moderation_status": d.Status, "updated_at": d.At}
	upd := bson.M{}
	switch d.Status {
	case models.BlogApproved:
		if d.ApprovedBy != nil {
			set["approved_by"] = *d.ApprovedBy
		}
		set["approved_at"] = d.At
	case models.BlogRejected:
		set["moderation_note"] = d.Note
		upd["$unset"] = bson.M{"approved_by": "", "approved_at": ""}
	}
	upd["$set"] = set
	return upd
}

// Moderate applies d only while the post is in one of from. It reports
// false when the post moved on (or vanished) in the meantime.
func (s *Store) Moderate(ctx context.Context, id primitive.ObjectID, from []models.ModerationStatus, d Decision) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "moderation_status": bson.M{"$in": from}}, d.toBSON())
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Status    models.ModerationStatus
	CompanyID *primitive.ObjectID
	AuthorID  *primitive.ObjectID
	Tag       string
}

func (f ListFilter) toBSON() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["moderation_status"] = f.Status
	}
	if f.CompanyID != nil {
		q["company_id"] = *f.CompanyID
	}
	if f.AuthorID != nil {
		q["author_id"] = *f.AuthorID
	}
	if f.Tag != "" {
		q["tags"] = f.Tag
	}
	return q
}

// List returns posts newest first plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.Blog, int64, error) {
	q := f.toBSON()
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
	out := []models.Blog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
