// Package apifeatures turns request query strings into MongoDB reads.
package apifeatures

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrInvalidQuery = errors.New("invalid query")

var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
	"search": {},
}

var operatorKey = regexp.MustCompile(`^([A-Za-z0-9_.]+)\[(gte|gt|lte|lt)\]$`)

// Query is a composed read: filter, order, projection and window.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Fields     []string
	Skip       int64
	Limit      int64
}

// FindOptions renders the non-filter parts of q for Collection.Find.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find().SetSort(q.Sort).SetSkip(q.Skip).SetLimit(q.Limit)
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// Features builds a Query stage by stage. One Features serves one request.
type Features struct {
	params map[string]string
	spec   Spec
	query  Query
	errs   []string
}

// New flattens values, keeping the last value of repeated keys.
func New(values url.Values, spec Spec) *Features {
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[len(v)-1]
		}
	}
	return &Features{
		params: params,
		spec:   spec,
		query:  Query{Filter: bson.M{}},
	}
}

// Filter turns every non-reserved parameter into a condition. field=v is an
// equality match, field[op]=v a comparison with op one of gte, gt, lte, lt.
func (f *Features) Filter() *Features {
	keys := make([]string, 0, len(f.params))
	for k := range f.params {
		if _, ok := reserved[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	conds := map[string]bson.M{}
	for _, key := range keys {
		field, op := key, ""
		if m := operatorKey.FindStringSubmatch(key); m != nil {
			field, op = m[1], "$"+m[2]
		}

		typ, ok := f.spec.Filters[field]
		if !ok {
			f.fail("unknown query parameter %q", key)
			continue
		}
		value, err := parseValue(typ, f.params[key])
		if err != nil {
			f.fail("invalid value for %s: %s", key, f.params[key])
			continue
		}

		if op == "" {
			op = "$eq"
		}
		if conds[field] == nil {
			conds[field] = bson.M{}
		}
		conds[field][op] = value
	}

	for field, ops := range conds {
		if eq, ok := ops["$eq"]; ok && len(ops) == 1 {
			f.query.Filter[field] = eq
			continue
		}
		f.query.Filter[field] = ops
	}
	return f
}

// Search adds a case-insensitive substring match of ?search= against the
// resource's search fields.
func (f *Features) Search() *Features {
	term := strings.TrimSpace(f.params["search"])
	if term == "" {
		return f
	}
	if len(f.spec.SearchFields) == 0 {
		f.fail("search is not supported on this resource")
		return f
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(f.spec.SearchFields))
	for _, field := range f.spec.SearchFields {
		or = append(or, bson.M{field: pattern})
	}
	f.query.Filter["$or"] = or
	return f
}

// Sort reads ?sort=a,-b. Later keys break ties of earlier ones; _id is
// always the final tie-breaker so pages are stable.
func (f *Features) Sort() *Features {
	raw, ok := f.params["sort"]
	if !ok || strings.TrimSpace(raw) == "" {
		raw = f.spec.DefaultSort
	}

	var order bson.D
	lastDir := -1
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir, part = -1, part[1:]
		}
		if !contains(f.spec.Sortable, part) {
			f.fail("cannot sort by %q", part)
			continue
		}
		order = append(order, bson.E{Key: part, Value: dir})
		lastDir = dir
	}
	f.query.Sort = append(order, bson.E{Key: "_id", Value: lastDir})
	return f
}

// LimitFields reads ?fields=a,b. The identity field is always returned.
func (f *Features) LimitFields() *Features {
	raw := strings.TrimSpace(f.params["fields"])
	if raw == "" {
		return f
	}

	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" || contains(f.query.Fields, field) {
			continue
		}
		if !contains(f.spec.Selectable, field) {
			f.fail("cannot select field %q", field)
			continue
		}
		f.query.Fields = append(f.query.Fields, field)
		f.query.Projection = append(f.query.Projection, bson.E{Key: field, Value: 1})
	}
	return f
}

// Paginate reads ?page= (default 1) and ?limit= (default from Spec.DefaultLimit).
// There is no upper bound on limit.
func (f *Features) Paginate() *Features {
	page := f.positiveInt("page", 1)
	limit := f.positiveInt("limit", f.spec.DefaultLimit)
	if page-1 > math.MaxInt64/limit {
		f.fail("page is out of range")
		return f
	}
	f.query.Skip = (page - 1) * limit
	f.query.Limit = limit
	return f
}

// Query returns the composed read, or ErrInvalidQuery describing every
// rejected parameter.
func (f *Features) Query() (Query, error) {
	if len(f.errs) > 0 {
		return Query{}, fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(f.errs, ", "))
	}
	if f.query.Sort == nil {
		f.query.Sort = bson.D{{Key: "_id", Value: -1}}
	}
	if f.query.Limit == 0 {
		f.query.Limit = f.spec.DefaultLimit
	}
	return f.query, nil
}

func (f *Features) positiveInt(key string, fallback int64) int64 {
	raw, ok := f.params[key]
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		f.fail("%s must be a positive integer", key)
		return fallback
	}
	return n
}

func (f *Features) fail(format string, args ...any) {
	f.errs = append(f.errs, fmt.Sprintf(format, args...))
}

func parseValue(typ FieldType, raw string) (any, error) {
	switch typ {
	case Number:
		return strconv.ParseFloat(raw, 64)
	case Integer:
		return strconv.Atoi(raw)
	case Bool:
		return strconv.ParseBool(raw)
	case ObjectID:
		return primitive.ObjectIDFromHex(raw)
	case Time:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	default:
		return raw, nil
	}
}
