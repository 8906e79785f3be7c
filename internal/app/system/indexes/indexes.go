// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Every uniqueness rule the workflows rely on
(one cycle per company+season, unique slugs, one version number per
template, one follow per student+company) lives here as a unique index, so
duplicate inserts fail in the store rather than in a check-then-insert.
Each set is idempotent; problems are aggregated so startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"user_permissions", permissionIndexes()},
		{"companies", companyIndexes()},
		{"company_contacts", contactIndexes()},
		{"recruitment_seasons", seasonIndexes()},
		{"company_season_cycles", cycleIndexes()},
		{"company_season_status_history", statusHistoryIndexes()},
		{"company_assignments", assignmentIndexes()},
		{"company_assignment_history", assignmentHistoryIndexes()},
		{"drives", driveIndexes()},
		{"email_templates", templateIndexes()},
		{"email_template_versions", templateVersionIndexes()},
		{"mail_requests", mailRequestIndexes()},
		{"blogs", blogIndexes()},
		{"contact_interactions", interactionIndexes()},
		{"notifications", notificationIndexes()},
		{"student_company_follows", followIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		name := ""
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if isUnique(unique) == isUnique(ex.Unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Same keys with a different name or uniqueness: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
		idx("idx_users_role_active_nameci", bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}, {Key: "name_ci", Value: 1}}),
	}
}

func permissionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_user_permissions_user_key", bson.D{{Key: "user_id", Value: 1}, {Key: "key", Value: 1}}),
	}
}

func companyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_companies_slug", bson.D{{Key: "slug", Value: 1}}),
		idx("idx_companies_nameci", bson.D{{Key: "name_ci", Value: 1}}),
		idx("idx_companies_industry_created", bson.D{{Key: "industry", Value: 1}, {Key: "created_at", Value: -1}}),
	}
}

func contactIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_contacts_company", bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}}),
	}
}

func seasonIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_seasons_created", bson.D{{Key: "created_at", Value: -1}}),
	}
}

func cycleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_cycles_company_season", bson.D{{Key: "company_id", Value: 1}, {Key: "season_id", Value: 1}}),
		idx("idx_cycles_season_status_updated", bson.D{{Key: "season_id", Value: 1}, {Key: "status", Value: 1}, {Key: "updated_at", Value: -1}}),
		idx("idx_cycles_owner_updated", bson.D{{Key: "owner_user_id", Value: 1}, {Key: "updated_at", Value: -1}}),
		idx("idx_cycles_next_follow_up", bson.D{{Key: "next_follow_up_at", Value: 1}}),
	}
}

func statusHistoryIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_status_history_cycle_changed", bson.D{{Key: "cycle_id", Value: 1}, {Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}}),
	}
}

func assignmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_assignments_item", bson.D{{Key: "item_type", Value: 1}, {Key: "item_id", Value: 1}}),
		idx("idx_assignments_assignee_active", bson.D{{Key: "assignee_user_id", Value: 1}, {Key: "is_active", Value: 1}}),
	}
}

func assignmentHistoryIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_assignment_history_assignment_changed", bson.D{{Key: "assignment_id", Value: 1}, {Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}}),
		idx("idx_assignment_history_changed", bson.D{{Key: "changed_at", Value: -1}}),
	}
}

func driveIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_drives_venue_window", bson.D{{Key: "venue", Value: 1}, {Key: "start_at", Value: 1}, {Key: "end_at", Value: 1}}),
		idx("idx_drives_company", bson.D{{Key: "company_id", Value: 1}, {Key: "start_at", Value: -1}}),
		idx("idx_drives_cycle", bson.D{{Key: "cycle_id", Value: 1}}),
	}
}

func templateIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_email_templates_slug", bson.D{{Key: "slug", Value: 1}}),
		idx("idx_email_templates_status_updated", bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}}),
	}
}

func templateVersionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_template_versions_template_version", bson.D{{Key: "template_id", Value: 1}, {Key: "version", Value: 1}}),
	}
}

func mailRequestIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_mail_requests_status_created", bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("idx_mail_requests_company", bson.D{{Key: "company_id", Value: 1}}),
	}
}

func blogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_blogs_status_created", bson.D{{Key: "moderation_status", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("idx_blogs_company_status", bson.D{{Key: "company_id", Value: 1}, {Key: "moderation_status", Value: 1}}),
		idx("idx_blogs_author_created", bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}),
	}
}

func interactionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_interactions_company_created", bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("idx_interactions_contact", bson.D{{Key: "contact_id", Value: 1}}),
	}
}

func notificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		idx("idx_notifications_user_read_created", bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}),
	}
}

func followIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		uniq("uniq_follows_student_company", bson.D{{Key: "student_id", Value: 1}, {Key: "company_id", Value: 1}}),
		idx("idx_follows_company", bson.D{{Key: "company_id", Value: 1}}),
	}
}
