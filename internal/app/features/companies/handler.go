// internal/app/features/companies/handler.go
package companies

import (
	"github.com/dalemusser/placementhub/internal/app/workflow/outreach"
	"go.uber.org/zap"
)

// Handler serves companies, their contacts, and the contact export.
type Handler struct {
	Engine *outreach.Engine
	Log    *zap.Logger
}

// NewHandler constructs a companies Handler around the outreach engine.
func NewHandler(engine *outreach.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}
