// Package memory is an in-process implementation of the repository
// interfaces.
//
// Documents are kept in their bson form so filters, sorts and projections
// built for Mongo behave the same way here. It backs the router tests and
// the "memory" database driver used to run the API without Mongo.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deppfellow/tours-api/internal/query"
	"github.com/deppfellow/tours-api/internal/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// collection stores documents of type T in insertion order.
type collection[T any] struct {
	mu     sync.RWMutex
	name   string
	docs   []bson.M
	unique [][]string
}

func newCollection[T any](name string, unique ...[]string) *collection[T] {
	return &collection[T]{name: name, unique: unique}
}

func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *collection[T]) notFound() error {
	return &storeerr.NotFoundError{Collection: c.name}
}

func (c *collection[T]) insert(v any) (primitive.ObjectID, error) {
	doc, err := toDoc(v)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		doc["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUnique(doc, -1); err != nil {
		return primitive.NilObjectID, err
	}
	c.docs = append(c.docs, doc)
	return id, nil
}

// checkUnique rejects doc when it collides with any other document on a
// unique key. skip is the index of doc itself when updating.
func (c *collection[T]) checkUnique(doc bson.M, skip int) error {
	for _, fields := range c.unique {
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			same := true
			for _, f := range fields {
				if !valuesEqual(doc[f], other[f]) {
					same = false
					break
				}
			}
			if same {
				return &storeerr.DuplicateError{
					Collection: c.name,
					Field:      strings.Join(fields, "_"),
					Value:      display(doc[fields[0]]),
				}
			}
		}
	}
	return nil
}

func display(v any) string {
	if id, ok := v.(primitive.ObjectID); ok {
		return id.Hex()
	}
	return fmt.Sprint(v)
}

func (c *collection[T]) indexOf(filter bson.M) int {
	for i, doc := range c.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func (c *collection[T]) findOne(filter bson.M) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(filter)
	if i < 0 {
		return nil, c.notFound()
	}
	return fromDoc[T](c.docs[i])
}

// find returns copies of the matching documents, sorted, paged and
// projected as q describes.
func (c *collection[T]) find(filter bson.M, q query.Query) ([]bson.M, error) {
	c.mu.RLock()
	matched := make([]bson.M, 0)
	for _, doc := range c.docs {
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if len(q.Sort) > 0 {
		sortDocs(matched, q.Sort)
	}

	start := min(int(q.Skip), len(matched))
	matched = matched[start:]
	if q.Limit > 0 && int(q.Limit) < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]bson.M, 0, len(matched))
	for _, doc := range matched {
		p, err := project(doc, q.Projection)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *collection[T]) findAll(filter bson.M, q query.Query) ([]T, error) {
	docs, err := c.find(filter, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := fromDoc[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// update mirrors FindOneAndUpdate with $set, $unset and $inc __v.
func (c *collection[T]) update(filter bson.M, set bson.M, unset []string, bumpVersion bool) (*T, error) {
	normalized := bson.M{}
	if len(set) > 0 {
		var err error
		if normalized, err = toDoc(set); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(filter)
	if i < 0 {
		return nil, c.notFound()
	}

	doc := make(bson.M, len(c.docs[i]))
	for k, v := range c.docs[i] {
		doc[k] = v
	}
	for k, v := range normalized {
		doc[k] = v
	}
	for _, k := range unset {
		delete(doc, k)
	}
	if bumpVersion {
		v, _ := toFloat(doc["__v"])
		doc["__v"] = int32(v) + 1
	}

	if err := c.checkUnique(doc, i); err != nil {
		return nil, err
	}
	c.docs[i] = doc
	return fromDoc[T](doc)
}

func (c *collection[T]) delete(filter bson.M) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(filter)
	if i < 0 {
		return c.notFound()
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return nil
}

func sortDocs(docs []bson.M, by bson.D) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, e := range by {
			a, _ := lookup(docs[i], e.Key)
			b, _ := lookup(docs[j], e.Key)
			cmp, ok := compare(a, b)
			if !ok || cmp == 0 {
				continue
			}
			if dir, _ := toFloat(e.Value); dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// project applies an inclusion or exclusion projection on top-level
// fields. _id is kept unless excluded explicitly.
func project(doc bson.M, projection bson.M) (bson.M, error) {
	if len(projection) == 0 {
		return doc, nil
	}

	var inclusion, exclusion bool
	for k, v := range projection {
		if k == "_id" {
			continue
		}
		if isZero(v) {
			exclusion = true
		} else {
			inclusion = true
		}
	}
	if inclusion && exclusion {
		return nil, fmt.Errorf("cannot mix inclusion and exclusion in projection")
	}

	out := bson.M{}
	if inclusion {
		for k, p := range projection {
			if !isZero(p) {
				if v, ok := doc[k]; ok {
					out[k] = v
				}
			}
		}
		if f, ok := projection["_id"]; !ok || !isZero(f) {
			out["_id"] = doc["_id"]
		}
		return out, nil
	}

	for k, v := range doc {
		if f, ok := projection[k]; ok && isZero(f) {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func isZero(v any) bool {
	f, _ := toFloat(v)
	return f == 0
}
