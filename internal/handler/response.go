package handler

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/deppfellow/tours-api/internal/middleware"
	"github.com/deppfellow/tours-api/internal/query"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// Response is the success envelope.
type Response struct {
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	Results     *int       `json:"results,omitempty"`
	CurrentPage int64      `json:"currentPage,omitempty"`
	RequestTime *time.Time `json:"requestTime,omitempty"`
	Data        any        `json:"data"`
}

// Data is the object under the data key.
type Data map[string]any

func success(c echo.Context, message string, data any) *Response {
	res := &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	if t := middleware.GetRequestTime(c); !t.IsZero() {
		res.RequestTime = &t
	}
	return res
}

// list adds the result count and page to a listing response.
func list(c echo.Context, message string, page int64, key string, items any) *Response {
	n := 0
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice {
		n = v.Len()
	}
	res := success(c, message, Data{key: items})
	res.Results = &n
	res.CurrentPage = page
	return res
}

// projectFields applies the fields= selection of values to items.
func projectFields(items any, values url.Values, derived map[string]string) (any, error) {
	return project(items, query.New(values).LimitFields().Query().Projection, derived)
}

// project drops from items the fields a fields= projection removed, so a
// response carries only what was asked for. derived lists virtual fields
// that are kept whenever their source field is.
func project(items any, projection bson.M, derived map[string]string) (any, error) {
	if _, hidden := projection["__v"]; len(projection) == 0 || (len(projection) == 1 && hidden) {
		return items, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []map[string]any{}
	}

	include, exclude := map[string]bool{"id": true}, map[string]bool{}
	inclusive := false
	for field, v := range projection {
		top, _, _ := strings.Cut(field, ".")
		if top == "_id" {
			top = "id"
		}
		if isExcluded(v) {
			exclude[top] = true
			continue
		}
		inclusive = true
		include[top] = true
	}
	for virtual, source := range derived {
		if include[source] {
			include[virtual] = true
		}
		if exclude[source] {
			exclude[virtual] = true
		}
	}

	for _, doc := range docs {
		for key := range doc {
			if (inclusive && !include[key]) || exclude[key] {
				delete(doc, key)
			}
		}
	}
	return docs, nil
}

func isExcluded(v any) bool {
	switch n := v.(type) {
	case int:
		return n == 0
	case int32:
		return n == 0
	case int64:
		return n == 0
	case bool:
		return !n
	}
	return false
}
