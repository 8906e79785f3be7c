// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

const (
	// DefaultLimit is used when the request does not name a page size.
	DefaultLimit = 20
	// MaxLimit caps any requested page size.
	MaxLimit = 100
	// MaxPage keeps Skip well inside int64 for any limit up to MaxLimit.
	MaxPage = math.MaxInt32
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Meta accompanies paginated success envelopes.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Parse reads "page" and "limit" from the query string. Missing or invalid
// values fall back to page 1 and DefaultLimit; limit is clamped to MaxLimit.
func Parse(r *http.Request) Params {
	return Normalize(Params{Page: atoi(query.Get(r, "page")), Limit: atoi(query.Get(r, "limit"))})
}

// Normalize applies defaults and bounds.
func Normalize(p Params) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip is the number of rows before this page.
func (p Params) Skip() int64 { return int64(p.Page-1) * int64(p.Limit) }

// Limit64 is the page size as int64 for Find().SetLimit().
func (p Params) Limit64() int64 { return int64(p.Limit) }

// NewMeta builds response meta for a page of a result set of size total.
func NewMeta(p Params, total int64) Meta {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
