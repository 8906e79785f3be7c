package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"go.uber.org/zap"
)

type errResp struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details []apperr.Issue `json:"details"`
	} `json:"error"`
}

func TestError_ValidationCarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	Error(rec, req, zap.NewNop(), apperr.Field("reason", "is required"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errResp
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %q", body.Error.Code)
	}
	if len(body.Error.Details) != 1 || body.Error.Details[0].Field != "reason" {
		t.Errorf("details = %+v", body.Error.Details)
	}
}

func TestError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	Error(rec, req, zap.NewNop(), errors.New("mongo: connection refused on 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errResp
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Error.Code != "INTERNAL" || body.Error.Message != "internal server error" {
		t.Errorf("unexpected body %+v", body.Error)
	}
}

func TestError_ForbiddenStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	Error(rec, req, nil, apperr.Forbidden(""))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestPage_IncludesMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	Page(rec, []string{"a"}, paging.NewMeta(paging.Params{Page: 2, Limit: 10}, 25))

	var body struct {
		Data []string    `json:"data"`
		Meta paging.Meta `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Meta.Total != 25 || body.Meta.TotalPages != 3 || body.Meta.Page != 2 {
		t.Errorf("meta = %+v", body.Meta)
	}
}
