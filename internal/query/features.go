// Package query turns a listing request's query string into a store
// query: filter, sort, projection and pagination.
//
// Features copies the incoming values on construction; callers can keep
// using their url.Values without seeing any rewrite made here.
package query

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/deppfellow/tours-api/internal/errs"
	"github.com/deppfellow/tours-api/internal/lib/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// MaxLimit caps the page size.
const MaxLimit = 10

// ErrMissingPagination is returned by Paginate when page or limit is absent.
var ErrMissingPagination = errs.New(http.StatusBadRequest, "No value specified for 'page' or 'limit'")

// Reserved keys never become filters.
var Reserved = []string{"page", "sort", "limit", "fields"}

var (
	defaultSort       = bson.D{{Key: "createdAt", Value: -1}}
	defaultProjection = bson.M{"__v": 0}

	bracketKey = regexp.MustCompile(`^([^\[\]]+)\[([^\[\]]+)\]$`)
	operators  = map[string]string{"gte": "$gte", "gt": "$gt", "lte": "$lte", "lt": "$lt"}
)

// Query is the built store query.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
}

// Features builds a Query step by step. Each step returns the receiver so
// steps chain; the first failure is kept and reported by Err and Build.
type Features struct {
	values url.Values
	query  Query
	page   int64
	err    error
}

// New copies values into a fresh builder.
func New(values url.Values) *Features {
	cp := make(url.Values, len(values))
	for k, v := range values {
		cp[k] = append([]string(nil), v...)
	}
	return &Features{
		values: cp,
		query: Query{
			Filter:     bson.M{},
			Sort:       defaultSort,
			Projection: defaultProjection,
		},
		page: 1,
	}
}

// Filter converts every non-reserved key into a filter condition.
//
//	difficulty=easy        -> {difficulty: "easy"}
//	price[lt]=500          -> {price: {$lt: 500}}
//	duration[foo]=3        -> {duration: {foo: 3}}
//
// Field names are not checked against the document schema.
func (f *Features) Filter(excluded ...string) *Features {
	if len(excluded) == 0 {
		excluded = Reserved
	}
	filter := bson.M{}
	for key, vals := range utils.OmitKeys(f.values, excluded...) {
		if len(vals) == 0 {
			continue
		}
		value := coerce(vals[0])

		m := bracketKey.FindStringSubmatch(key)
		if m == nil {
			filter[key] = value
			continue
		}

		field, op := m[1], m[2]
		if mapped, ok := operators[op]; ok {
			op = mapped
		}
		cond, ok := filter[field].(bson.M)
		if !ok {
			cond = bson.M{}
			filter[field] = cond
		}
		cond[op] = value
	}

	f.query.Filter = filter
	return f
}

// Sort reads sort=a,-b. Without it results are newest first.
func (f *Features) Sort() *Features {
	raw := f.values.Get("sort")
	if raw == "" {
		f.query.Sort = defaultSort
		return f
	}

	sort := bson.D{}
	for _, field := range splitList(raw) {
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = strings.TrimPrefix(field, "-")
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	if len(sort) == 0 {
		sort = defaultSort
	}
	f.query.Sort = sort
	return f
}

// LimitFields reads fields=a,b (inclusion) or fields=-a (exclusion).
// Without it the internal version field is hidden.
func (f *Features) LimitFields() *Features {
	raw := f.values.Get("fields")
	if raw == "" {
		f.query.Projection = defaultProjection
		return f
	}

	projection := bson.M{}
	for _, field := range splitList(raw) {
		if strings.HasPrefix(field, "-") {
			projection[strings.TrimPrefix(field, "-")] = 0
			continue
		}
		projection[field] = 1
	}
	if len(projection) == 0 {
		projection = defaultProjection
	}
	f.query.Projection = projection
	return f
}

// Paginate requires both page and limit. The limit is capped at MaxLimit
// and a page below 1 becomes 1.
func (f *Features) Paginate() *Features {
	if f.err != nil {
		return f
	}
	if f.values.Get("page") == "" || f.values.Get("limit") == "" {
		f.err = ErrMissingPagination
		return f
	}

	page, err := strconv.ParseInt(f.values.Get("page"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(f.values.Get("limit"), 10, 64)
	if err != nil || limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	f.page = page
	f.query.Limit = limit
	f.query.Skip = (page - 1) * limit
	return f
}

// Page is the current page, 1 until Paginate succeeds.
func (f *Features) Page() int64 {
	return f.page
}

// Err returns the first failure recorded by a step.
func (f *Features) Err() error {
	return f.err
}

// Query returns the query built so far.
func (f *Features) Query() Query {
	return f.query
}

// Build runs every step in order and returns the resulting query.
func (f *Features) Build() (Query, error) {
	f.Filter().Sort().LimitFields().Paginate()
	if f.err != nil {
		return Query{}, f.err
	}
	return f.query, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// coerce turns numeric and boolean strings into typed values.
func coerce(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if fl, err := strconv.ParseFloat(v, 64); err == nil && !strings.ContainsAny(v, "xXnN") {
		return fl
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
