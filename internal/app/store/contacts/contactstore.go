// internal/app/store/contacts/contactstore.go
package contactstore

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
	return &Store{c: db.Collection("company_contacts")}
}

func (s *Store) Create(ctx context.Context, c models.Contact) (models.Contact, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Update writes the editable fields of c back by id. LastContactedAt is
// owned by Touch and left alone.
func (s *Store) Update(ctx context.Context, c models.Contact) error {
	res, err := s.c.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"name":                     c.Name,
		"designation":              c.Designation,
		"emails":                   c.Emails,
		"phones":                   c.Phones,
		"preferred_contact_method": c.PreferredContactMethod,
		"notes":                    c.Notes,
		"updated_at":               c.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Touch records that the contact was just reached.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_contacted_at": at, "updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns contacts ordered by name. A nil companyID lists every company.
func (s *Store) List(ctx context.Context, companyID *primitive.ObjectID) ([]models.Contact, error) {
	q := bson.M{}
	if companyID != nil {
		q["company_id"] = *companyID
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IDsByCompany returns the ids of every contact belonging to companyID.
func (s *Store) IDsByCompany(ctx context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, options.Find().SetProjection(bson.M{"_id": 1}))
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
