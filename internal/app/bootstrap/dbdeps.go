// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	PlacementHubMongoClient   *mongo.Client
	PlacementHubMongoDatabase *mongo.Database

	// Workers runs background jobs over the database; nil when none are
	// configured. Started in Startup, stopped in Shutdown.
	Workers *workers.Runner

	// Audit is the audit sink shared by every engine. Shutdown waits for
	// its pending store writes.
	Audit *auditlog.Logger
}
