// internal/app/bootstrap/engines.go
package bootstrap

import (
	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	auditstore "github.com/dalemusser/placementhub/internal/app/store/audit"
	blogstore "github.com/dalemusser/placementhub/internal/app/store/blogs"
	companystore "github.com/dalemusser/placementhub/internal/app/store/companies"
	contactstore "github.com/dalemusser/placementhub/internal/app/store/contacts"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	drivestore "github.com/dalemusser/placementhub/internal/app/store/drives"
	followstore "github.com/dalemusser/placementhub/internal/app/store/follows"
	interactionstore "github.com/dalemusser/placementhub/internal/app/store/interactions"
	mailrequeststore "github.com/dalemusser/placementhub/internal/app/store/mailrequests"
	mailtemplatestore "github.com/dalemusser/placementhub/internal/app/store/mailtemplates"
	notificationstore "github.com/dalemusser/placementhub/internal/app/store/notifications"
	permissionstore "github.com/dalemusser/placementhub/internal/app/store/permissions"
	seasonstore "github.com/dalemusser/placementhub/internal/app/store/seasons"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/app/workflow/accounts"
	"github.com/dalemusser/placementhub/internal/app/workflow/blogflow"
	"github.com/dalemusser/placementhub/internal/app/workflow/cyclestatus"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/app/workflow/mailflow"
	"github.com/dalemusser/placementhub/internal/app/workflow/outreach"
	"github.com/dalemusser/placementhub/internal/app/workflow/ownership"
	"github.com/dalemusser/placementhub/internal/app/workflow/scheduling"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// engines bundles the workflow engines the feature handlers run on.
type engines struct {
	outreach   *outreach.Engine
	cycles     *cyclestatus.Engine
	ownership  *ownership.Engine
	mail       *mailflow.Engine
	scheduling *scheduling.Engine
	accounts   *accounts.Engine
	blogs      *blogflow.Engine
}

// buildEngines wires every store over db and shares one transactor and one
// audit sink between the engines.
func buildEngines(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) engines {
	companies := companystore.New(db)
	contacts := contactstore.New(db)
	cycles := cyclestore.New(db)
	cycleHistory := cyclestore.NewHistory(db)
	assignments := assignmentstore.New(db)
	assignmentHistory := assignmentstore.NewHistory(db)
	drives := drivestore.New(db)
	follows := followstore.New(db)
	permissions := permissionstore.New(db)
	audits := auditstore.New(db)
	blogs := blogstore.New(db)

	env := flow.Env{
		Tx:    txn.Mongo{DB: db, Log: logger},
		Audit: audit,
	}

	return engines{
		outreach: &outreach.Engine{
			Env:               env,
			Companies:         companies,
			Contacts:          contacts,
			Interactions:      interactionstore.New(db),
			Cycles:            cycles,
			CycleHistory:      cycleHistory,
			Assignments:       assignments,
			AssignmentHistory: assignmentHistory,
			Drives:            drives,
			MailRequests:      mailrequeststore.New(db),
			Follows:           follows,
			Blogs:             blogs,
			Permissions:       permissions,
		},
		cycles: &cyclestatus.Engine{
			Env:       env,
			Cycles:    cycles,
			History:   cycleHistory,
			Companies: companies,
			Seasons:   seasonstore.New(db),
		},
		ownership: &ownership.Engine{
			Env:         env,
			Assignments: assignments,
			History:     assignmentHistory,
			Users:       userstore.New(db),
			Log:         logger,
		},
		mail: &mailflow.Engine{
			Env:         env,
			Templates:   mailtemplatestore.New(db),
			Versions:    mailtemplatestore.NewVersions(db),
			Requests:    mailrequeststore.New(db),
			Permissions: permissions,
			Companies:   companies,
		},
		scheduling: &scheduling.Engine{
			Env:           env,
			Seasons:       seasonstore.New(db),
			Cycles:        cycles,
			Drives:        drives,
			Followers:     follows,
			Notifications: notificationstore.New(db),
		},
		accounts: &accounts.Engine{
			Env:           env,
			Users:         userstore.New(db),
			Permissions:   permissions,
			Notifications: notificationstore.New(db),
			Follows:       follows,
			Companies:     companies,
			AuditLog:      audits,
		},
		blogs: &blogflow.Engine{
			Env:       env,
			Blogs:     blogs,
			Companies: companies,
		},
	}
}
