// internal/app/features/companies/export.go
package companies

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/csvutil"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeContactsCSV handles GET /exports/contacts?companyId= and streams the
// contacts as a CSV attachment.
func (h *Handler) ServeContactsCSV(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	companyID, err := params.QueryID(r, "companyId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "export contacts")
	defer cancel()

	rows, err := h.Engine.ExportContacts(ctx, actor, companyID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	filename := fmt.Sprintf("contacts_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := csvutil.WriteContacts(w, rows); err != nil {
		// Headers are already out; all we can do is log.
		h.Log.Warn("contact export write failed", zap.Error(err), zap.Int("rows", len(rows)))
	}
}
