// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/placementhub/internal/app/workflow/accounts"
	"go.uber.org/zap"
)

type Handler struct {
	Engine *accounts.Engine
	Log    *zap.Logger
}

// NewHandler constructs an Audit Log feature handler bound to the
// accounts engine, which owns the admin-only audit query.
func NewHandler(engine *accounts.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: engine,
		Log:    logger,
	}
}
