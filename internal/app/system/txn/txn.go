// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when multi-document transactions are
// unavailable (standalone server, or an operation illegal in a transaction).
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true, // legacy "illegal operation"
	263: true, // OperationNotSupportedInTransaction
}

var notSupportedKeywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// Run executes fn inside a MongoDB transaction. When the deployment cannot
// run transactions, fn is executed once more without one and a warning is
// logged. Errors returned by fn are returned unchanged.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("sessions not supported, running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions not supported, running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err means transactions are unavailable.
// Command errors are matched by code; other errors need at least two
// keyword hits in their message.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}

// Mongo adapts Run to the Transactor interfaces the workflow engines accept.
type Mongo struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// Run executes fn in a transaction against m.DB.
func (m Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, m.DB, m.Log, fn)
}
