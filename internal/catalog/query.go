package catalog

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Query is the catalog listing filter. Zero-valued fields are omitted from the
// upstream request and the cache key.
type Query struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// Values serializes the query for the upstream catalog API.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice != nil {
		v.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("max_price", q.MaxPrice.String())
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
		dir := q.SortDir
		if dir == "" {
			dir = "asc"
		}
		v.Set("sort_dir", dir)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// CacheKey is the canonical serialization of the query. url.Values.Encode
// sorts by parameter name, so equivalent queries built in any field order
// share one cache entry.
func (q Query) CacheKey() string {
	return "catalog:query:" + q.Values().Encode()
}
