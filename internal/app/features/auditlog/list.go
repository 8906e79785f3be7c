// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
)

// ServeList handles GET /audit with optional actorId, targetId, action,
// targetType, startDate and endDate filters. A date-only endDate covers
// the whole day.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)
	filter.Offset, filter.Limit = p.Skip(), p.Limit64()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	rows, total, err := h.Engine.ListAudit(ctx, actor, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// ServeActions handles GET /audit/actions, the filter vocabulary.
func (h *Handler) ServeActions(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, catalog())
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	var (
		f   audit.QueryFilter
		err error
	)
	if f.ActorID, err = params.QueryID(r, "actorId"); err != nil {
		return f, err
	}
	if f.TargetID, err = params.QueryID(r, "targetId"); err != nil {
		return f, err
	}

	f.Action = strings.TrimSpace(params.Query(r, "action"))
	if f.Action != "" && !knownAction(f.Action) {
		return f, apperr.Field("action", "is not a recorded action")
	}
	f.TargetType = strings.ToLower(strings.TrimSpace(params.Query(r, "targetType")))
	if f.TargetType != "" && !knownTarget(f.TargetType) {
		return f, apperr.Field("targetType", "is not a recorded target type")
	}

	if f.StartTime, err = params.QueryTime(r, "startDate"); err != nil {
		return f, err
	}
	if f.EndTime, err = params.QueryTime(r, "endDate"); err != nil {
		return f, err
	}
	if f.EndTime != nil {
		if _, perr := time.Parse(time.DateOnly, params.Query(r, "endDate")); perr == nil {
			end := f.EndTime.Add(24*time.Hour - time.Nanosecond)
			f.EndTime = &end
		}
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, apperr.Field("endDate", "must not precede startDate")
	}
	return f, nil
}
