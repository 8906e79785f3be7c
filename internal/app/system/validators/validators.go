// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/placementhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates every collection the workflows write to and attaches
// JSON-Schema validators that pin the closed enumerations (roles, statuses,
// types) at the storage layer. Collections must exist before the first
// multi-document transaction touches them. Servers without collMod support
// are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("user_permissions", nil)
	ensure("companies", companiesSchema())
	ensure("company_contacts", nil)
	ensure("recruitment_seasons", seasonsSchema())
	ensure("company_season_cycles", cyclesSchema())
	ensure("company_season_status_history", statusHistorySchema())
	ensure("company_assignments", assignmentsSchema())
	ensure("company_assignment_history", assignmentHistorySchema())
	ensure("drives", drivesSchema())
	ensure("email_templates", templatesSchema())
	ensure("email_template_versions", nil)
	ensure("mail_requests", mailRequestsSchema())
	ensure("blogs", blogsSchema())
	ensure("contact_interactions", nil)
	ensure("notifications", nil)
	ensure("student_company_follows", nil)
	ensure("audit_logs", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum[T ~string](vals ...T) bson.M {
	a := make(bson.A, len(vals))
	for i, v := range vals {
		a[i] = string(v)
	}
	return bson.M{"enum": a}
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{"$jsonSchema": bson.M{"bsonType": "object", "required": required, "properties": props}}
}

func usersSchema() bson.M {
	return object(bson.A{"email", "name", "role", "is_active"}, bson.M{
		"email":            nonBlank,
		"name":             nonBlank,
		"role":             enum(models.RoleAdmin, models.RoleCoordinator, models.RoleStudent, models.RoleSupport),
		"coordinator_type": enum(models.CoordinatorGeneral, models.CoordinatorStudentRepresentative, models.CoordinatorMailingTeam),
		"is_active":        bson.M{"bsonType": "bool"},
	})
}

func companiesSchema() bson.M {
	return object(bson.A{"name", "slug"}, bson.M{
		"name": nonBlank,
		"slug": nonBlank,
	})
}

func seasonsSchema() bson.M {
	return object(bson.A{"name", "season_type", "academic_year"}, bson.M{
		"name":          nonBlank,
		"season_type":   enum(models.SeasonIntern, models.SeasonPlacement),
		"academic_year": nonBlank,
	})
}

var cycleStatusEnum = enum(models.CycleNotContacted, models.CycleContacted, models.CyclePositive, models.CycleAccepted, models.CycleRejected)

func cyclesSchema() bson.M {
	return object(bson.A{"company_id", "season_id", "status"}, bson.M{
		"company_id": bson.M{"bsonType": "objectId"},
		"season_id":  bson.M{"bsonType": "objectId"},
		"status":     cycleStatusEnum,
	})
}

func statusHistorySchema() bson.M {
	return object(bson.A{"cycle_id", "to_status", "changed_by", "changed_at"}, bson.M{
		"cycle_id":    bson.M{"bsonType": "objectId"},
		"from_status": cycleStatusEnum,
		"to_status":   cycleStatusEnum,
		"changed_by":  bson.M{"bsonType": "objectId"},
	})
}

func assignmentsSchema() bson.M {
	return object(bson.A{"item_type", "item_id", "assignee_user_id", "assignment_role"}, bson.M{
		"item_type":        enum(models.ItemCompany, models.ItemContact),
		"item_id":          bson.M{"bsonType": "objectId"},
		"assignee_user_id": bson.M{"bsonType": "objectId"},
		"assignment_role":  enum(models.AssignPrimary, models.AssignSecondary),
	})
}

func assignmentHistorySchema() bson.M {
	return object(bson.A{"assignment_id", "to_user_id", "changed_by", "reason"}, bson.M{
		"assignment_id": bson.M{"bsonType": "objectId"},
		"to_user_id":    bson.M{"bsonType": "objectId"},
		"changed_by":    bson.M{"bsonType": "objectId"},
		"reason":        nonBlank,
	})
}

func drivesSchema() bson.M {
	return object(bson.A{"company_id", "cycle_id", "title", "stage", "status"}, bson.M{
		"title":  nonBlank,
		"stage":  enum(models.StageOA, models.StageInterview, models.StageHR, models.StageFinal, models.StageOther),
		"status": enum(models.DriveTentative, models.DriveConfirmed, models.DriveCompleted, models.DriveCancelled),
	})
}

func templatesSchema() bson.M {
	return object(bson.A{"name", "slug", "subject", "body_html", "status"}, bson.M{
		"name":   nonBlank,
		"slug":   nonBlank,
		"status": enum(models.TemplateDraft, models.TemplateApproved, models.TemplateArchived),
	})
}

func blogsSchema() bson.M {
	return object(bson.A{"author_id", "company_id", "title", "moderation_status"}, bson.M{
		"author_id":         bson.M{"bsonType": "objectId"},
		"company_id":        bson.M{"bsonType": "objectId"},
		"title":             nonBlank,
		"moderation_status": enum(models.BlogPending, models.BlogApproved, models.BlogRejected),
	})
}

func mailRequestsSchema() bson.M {
	return object(bson.A{"requested_by", "request_type", "status"}, bson.M{
		"request_type": enum(models.RequestTemplate, models.RequestCustom),
		"status": enum(models.RequestPending, models.RequestApproved, models.RequestScheduled,
			models.RequestSent, models.RequestRejected, models.RequestCancelled),
	})
}
