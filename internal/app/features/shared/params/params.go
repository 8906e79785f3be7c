// Package params reads typed values out of route and query parameters.
// Malformed values become VALIDATION_FAILED errors naming the parameter.
package params

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PathID parses the chi route parameter key as an ObjectID.
func PathID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, apperr.Field(key, "must be a valid id")
	}
	return id, nil
}

// QueryID parses an optional ObjectID query parameter. Absent yields nil.
func QueryID(r *http.Request, key string) (*primitive.ObjectID, error) {
	s := query.Get(r, key)
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, apperr.Field(key, "must be a valid id")
	}
	return &id, nil
}

// QueryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date.
func QueryTime(r *http.Request, key string) (*time.Time, error) {
	s := query.Get(r, key)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Field(key, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// QueryBool parses an optional boolean. Absent yields false.
func QueryBool(r *http.Request, key string) (bool, error) {
	s := query.Get(r, key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperr.Field(key, "must be true or false")
	}
	return b, nil
}

// Query returns the query parameter key.
func Query(r *http.Request, key string) string { return query.Get(r, key) }

// QueryEnum parses an optional enum query parameter with parse. Absent
// yields the zero value.
func QueryEnum[T ~string](r *http.Request, key string, parse func(string) (T, error)) (T, error) {
	s := query.Get(r, key)
	if s == "" {
		return "", nil
	}
	v, err := parse(s)
	if err != nil {
		return "", apperr.Field(key, err.Error())
	}
	return v, nil
}
