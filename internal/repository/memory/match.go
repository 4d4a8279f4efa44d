package memory

import (
	"bytes"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches evaluates the subset of the Mongo query language the
// repositories and the query builder produce: equality, $eq, $ne, $gt,
// $gte, $lt, $lte, $in, $nin, $exists, $and and $or.
func matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range asList(cond) {
				if !matches(doc, asDoc(sub)) {
					return false
				}
			}
		case "$or":
			hit := false
			for _, sub := range asList(cond) {
				if matches(doc, asDoc(sub)) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			val, found := lookup(doc, key)
			if !matchCond(val, found, cond) {
				return false
			}
		}
	}
	return true
}

func matchCond(val any, found bool, cond any) bool {
	ops, isOps := operatorDoc(cond)
	if !isOps {
		return matchEq(val, found, cond)
	}
	for op, arg := range ops {
		if !evalOp(op, val, found, arg) {
			return false
		}
	}
	return true
}

// operatorDoc reports whether cond is an {$op: arg} document.
func operatorDoc(cond any) (bson.M, bool) {
	m, ok := cond.(bson.M)
	if !ok {
		if d, isD := cond.(bson.D); isD {
			m, ok = d.Map(), true
		}
	}
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func evalOp(op string, val any, found bool, arg any) bool {
	switch op {
	case "$eq":
		return matchEq(val, found, arg)
	case "$ne":
		return !matchEq(val, found, arg)
	case "$in":
		for _, want := range asList(arg) {
			if matchEq(val, found, want) {
				return true
			}
		}
		return false
	case "$nin":
		return !evalOp("$in", val, found, arg)
	case "$exists":
		want, _ := arg.(bool)
		return found == want
	case "$gt", "$gte", "$lt", "$lte":
		if !found {
			return false
		}
		return anyElement(val, func(v any) bool {
			cmp, ok := compare(v, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				return cmp > 0
			case "$gte":
				return cmp >= 0
			case "$lt":
				return cmp < 0
			default:
				return cmp <= 0
			}
		})
	}
	return false
}

func matchEq(val any, found bool, want any) bool {
	if want == nil {
		return !found || val == nil
	}
	if !found {
		return false
	}
	if valuesEqual(val, want) {
		return true
	}
	return anyElement(val, func(v any) bool { return valuesEqual(v, want) })
}

// anyElement applies pred to each element of an array value, or to the
// value itself when it is not an array.
func anyElement(val any, pred func(any) bool) bool {
	arr, ok := val.(bson.A)
	if !ok {
		return pred(val)
	}
	for _, v := range arr {
		if pred(v) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b any) bool {
	if cmp, ok := compare(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// compare orders two scalar values of the same bson type family.
func compare(a, b any) (int, bool) {
	a, b = normalize(a), normalize(b)

	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return strings.Compare(av, bv), ok
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	case primitive.DateTime:
		bv, ok := b.(primitive.DateTime)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case primitive.ObjectID:
		bv, ok := b.(primitive.ObjectID)
		return bytes.Compare(av[:], bv[:]), ok
	}
	return 0, false
}

// normalize maps Go values onto the types bson decoding produces.
func normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return primitive.NewDateTimeFromTime(*t)
	case string, bool, primitive.DateTime, primitive.ObjectID, nil:
		return v
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// lookup resolves a dotted path through embedded documents.
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case bson.M:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			v, ok := node.Map()[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func asList(v any) []any {
	switch l := v.(type) {
	case bson.A:
		return l
	case []any:
		return l
	case []bson.M:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func asDoc(v any) bson.M {
	switch d := v.(type) {
	case bson.M:
		return d
	case bson.D:
		return d.Map()
	}
	return bson.M{}
}
