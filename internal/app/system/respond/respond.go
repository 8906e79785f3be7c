// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"go.uber.org/zap"
)

type envelope struct {
	Data any          `json:"data"`
	Meta *paging.Meta `json:"meta,omitempty"`
}

type errorBody struct {
	Code    apperr.Kind `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, envelope{Data: data})
}

// Page writes a success envelope with pagination meta.
func Page(w http.ResponseWriter, data any, meta paging.Meta) {
	JSON(w, http.StatusOK, envelope{Data: data, Meta: &meta})
}

// Error writes the error envelope for err. Internal failures are logged
// and reported with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	body := errorBody{Code: apperr.KindInternal, Message: "internal server error"}

	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		body.Code = ae.Kind
		body.Message = ae.Message
		if len(ae.Issues) > 0 {
			body.Details = ae.Issues
		}
	} else if log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	JSON(w, apperr.Status(body.Code), errorEnvelope{Error: body})
}
