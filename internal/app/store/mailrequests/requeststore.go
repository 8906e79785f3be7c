// internal/app/store/mailrequests/requeststore.go
package requeststore

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
	return &Store{c: db.Collection("mail_requests")}
}

func (s *Store) Create(ctx context.Context, r models.MailRequest) (models.MailRequest, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.MailRequest{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MailRequest, error) {
	var r models.MailRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.MailRequest{}, err
	}
	return r, nil
}

// GetByIDs loads the requests with the given ids, in no particular order.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MailRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.MailRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Change is the set of fields a lifecycle transition writes. Nil pointers
// and empty strings are left untouched.
type Change struct {
	Status     models.RequestStatus
	ReviewedBy *primitive.ObjectID
	ReviewNote string
	SendAt     *time.Time
	SentAt     *time.Time
	At         time.Time
}

func (ch Change) toBSON() bson.M {
	set := bson.M{"status": ch.Status, "updated_at": ch.At}
	if ch.ReviewedBy != nil {
		set["reviewed_by"] = *ch.ReviewedBy
	}
	if ch.ReviewNote != "" {
		set["review_note"] = ch.ReviewNote
	}
	if ch.SendAt != nil {
		set["send_at"] = *ch.SendAt
	}
	if ch.SentAt != nil {
		set["sent_at"] = *ch.SentAt
	}
	return bson.M{"$set": set}
}

// Transition applies ch only while the request is in one of from. It
// reports false when the request moved on (or vanished) in the meantime.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, from []models.RequestStatus, ch Change) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": bson.M{"$in": from}}, ch.toBSON())
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// TransitionMany applies ch to every listed request still in one of from
// and returns how many matched.
func (s *Store) TransitionMany(ctx context.Context, ids []primitive.ObjectID, from []models.RequestStatus, ch Change) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "status": bson.M{"$in": from}}, ch.toBSON())
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Status      models.RequestStatus
	RequestedBy *primitive.ObjectID
	CompanyID   *primitive.ObjectID
}

// List returns requests newest first plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.MailRequest, int64, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.RequestedBy != nil {
		q["requested_by"] = *f.RequestedBy
	}
	if f.CompanyID != nil {
		q["company_id"] = *f.CompanyID
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
	out := []models.MailRequest{}
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
