// Package templatestore persists mail templates and their immutable
// version snapshots.
package templatestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateSlug    = errors.New("a template with this slug already exists")
	ErrDuplicateVersion = errors.New("template version already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("email_templates")}
}

func (s *Store) Create(ctx context.Context, t models.MailTemplate) (models.MailTemplate, error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MailTemplate{}, ErrDuplicateSlug
		}
		return models.MailTemplate{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MailTemplate, error) {
	var t models.MailTemplate
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.MailTemplate{}, err
	}
	return t, nil
}

// Update writes content, status and version of t. The slug never changes.
func (s *Store) Update(ctx context.Context, t models.MailTemplate) error {
	set := bson.M{
		"name":       t.Name,
		"subject":    t.Subject,
		"body_html":  t.BodyHTML,
		"body_text":  t.BodyText,
		"variables":  t.Variables,
		"status":     t.Status,
		"version":    t.Version,
		"updated_at": t.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if t.SendPolicy != nil {
		set["send_policy"] = t.SendPolicy
	}
	if t.ApprovedBy != nil {
		set["approved_by"] = *t.ApprovedBy
	} else {
		update["$unset"] = bson.M{"approved_by": ""}
	}
	res, err := s.c.UpdateByID(ctx, t.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns templates most recently updated first. An empty status lists all.
func (s *Store) List(ctx context.Context, status models.TemplateStatus) ([]models.MailTemplate, error) {
	q := bson.M{}
	if status != "" {
		q["status"] = status
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.MailTemplate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VersionStore holds snapshots taken when an approved template is edited.
type VersionStore struct {
	c *mongo.Collection
}

func NewVersions(db *mongo.Database) *VersionStore {
	return &VersionStore{c: db.Collection("email_template_versions")}
}

// MaxVersion returns the highest snapshot number for templateID, or 0.
func (s *VersionStore) MaxVersion(ctx context.Context, templateID primitive.ObjectID) (int, error) {
	var row struct {
		Version int `bson:"version"`
	}
	err := s.c.FindOne(ctx, bson.M{"template_id": templateID},
		options.FindOne().
			SetSort(bson.D{{Key: "version", Value: -1}}).
			SetProjection(bson.M{"version": 1})).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Version, nil
}

// Insert stores a snapshot. (template_id, version) is unique.
func (s *VersionStore) Insert(ctx context.Context, v models.EmailTemplateVersion) (models.EmailTemplateVersion, error) {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.EmailTemplateVersion{}, ErrDuplicateVersion
		}
		return models.EmailTemplateVersion{}, err
	}
	return v, nil
}

// ListByTemplate returns snapshots newest version first.
func (s *VersionStore) ListByTemplate(ctx context.Context, templateID primitive.ObjectID) ([]models.EmailTemplateVersion, error) {
	cur, err := s.c.Find(ctx, bson.M{"template_id": templateID},
		options.Find().SetSort(bson.D{{Key: "version", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.EmailTemplateVersion{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
