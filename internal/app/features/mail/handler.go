// internal/app/features/mail/handler.go
package mail

import (
	"github.com/dalemusser/placementhub/internal/app/workflow/mailflow"
	"go.uber.org/zap"
)

// Handler serves mail templates and mail requests.
type Handler struct {
	Engine *mailflow.Engine
	Log    *zap.Logger
}

func NewHandler(engine *mailflow.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}
