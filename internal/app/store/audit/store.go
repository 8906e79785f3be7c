// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions recorded by the workflow and admin operations.
const (
	ActionCreateCycle            = "create_company_season_cycle"
	ActionUpdateCycleStatus      = "update_cycle_status"
	ActionCreateAssignment       = "create_assignment"
	ActionBulkCreateAssignments  = "bulk_create_assignments"
	ActionReassignAssignment     = "reassign_assignment"
	ActionCreateTemplate         = "create_email_template"
	ActionUpdateTemplate         = "update_email_template"
	ActionApproveTemplate        = "approve_email_template"
	ActionArchiveTemplate        = "archive_email_template"
	ActionCreateMailRequest      = "create_mail_request"
	ActionApproveMailRequest     = "approve_mail_request"
	ActionBulkApproveMailRequest = "bulk_approve_mail_requests"
	ActionRejectMailRequest      = "reject_mail_request"
	ActionCancelMailRequest      = "cancel_mail_request"
	ActionMarkMailRequestSent    = "mark_mail_request_sent"
	ActionCreateCompany          = "create_company"
	ActionUpdateCompany          = "update_company"
	ActionDeleteCompany          = "delete_company"
	ActionCreateContact          = "create_contact"
	ActionUpdateContact          = "update_contact"
	ActionDeleteContact          = "delete_contact"
	ActionContactPrefix          = "contact_" // + interaction type
	ActionCreateSeason           = "create_season"
	ActionCreateDrive            = "create_drive"
	ActionUpdateDrive            = "update_drive"
	ActionConfirmDrive           = "confirm_drive"
	ActionProvisionUser          = "provision_user"
	ActionSetUserActive          = "set_user_active"
	ActionUpdatePermissions      = "update_user_permissions"
	ActionExportContacts         = "export_contacts"
	ActionCreateBlog             = "create_blog"
	ActionApproveBlog            = "approve_blog"
	ActionRejectBlog             = "reject_blog"
)

// Target types.
const (
	TargetCycle       = "company_season_cycle"
	TargetAssignment  = "assignment"
	TargetTemplate    = "email_template"
	TargetMailRequest = "mail_request"
	TargetCompany     = "company"
	TargetContact     = "contact"
	TargetSeason      = "season"
	TargetDrive       = "drive"
	TargetUser        = "user"
	TargetBlog        = "blog"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time           `bson:"timestamp" json:"createdAt"`
	ActorID    *primitive.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	Action     string              `bson:"action" json:"action"`
	TargetType string              `bson:"target_type,omitempty" json:"targetType,omitempty"`
	TargetID   *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"`
	Meta       map[string]string   `bson:"meta,omitempty" json:"meta,omitempty"`

	IP        string `bson:"ip,omitempty" json:"ipAddress,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	RequestID string `bson:"request_id,omitempty" json:"requestId,omitempty"`
}

// QueryFilter narrows audit queries. Zero fields are ignored.
type QueryFilter struct {
	ActorID    *primitive.ObjectID
	TargetID   *primitive.ObjectID
	Action     string
	TargetType string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int64
	Offset     int64
}

// Store manages audit records. Entries are only ever inserted.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// EnsureIndexes creates the query indexes for the audit collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

// Log inserts an entry.
func (s *Store) Log(ctx context.Context, e Entry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns entries matching f, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(f.Offset)

	cur, err := s.c.Find(ctx, f.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByFilter counts entries matching f.
func (s *Store) CountByFilter(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.toBSON())
}

func (f QueryFilter) toBSON() bson.M {
	q := bson.M{}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.TargetID != nil {
		q["target_id"] = *f.TargetID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.TargetType != "" {
		q["target_type"] = f.TargetType
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}
