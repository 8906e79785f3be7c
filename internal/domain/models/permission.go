// internal/domain/models/permission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission keys checked by endpoints that need finer control than roles.
const (
	PermExportContacts  = "export_contacts"
	PermManageTemplates = "manage_templates"
)

// UserPermission is a per-user override for one permission key.
// (user_id, key) is unique.
type UserPermission struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	Key       string              `bson:"key" json:"permissionKey"`
	Allowed   bool                `bson:"allowed" json:"isAllowed"`
	GrantedBy *primitive.ObjectID `bson:"granted_by,omitempty" json:"grantedBy,omitempty"`
	GrantedAt time.Time           `bson:"granted_at" json:"grantedAt"`
}
