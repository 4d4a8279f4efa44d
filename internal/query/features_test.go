package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewDoesNotMutateInput(t *testing.T) {
	in := url.Values{"price[gte]": {"500"}, "page": {"2"}, "limit": {"3"}}
	_, err := New(in).Build()
	require.NoError(t, err)

	assert.Equal(t, url.Values{"price[gte]": {"500"}, "page": {"2"}, "limit": {"3"}}, in)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   bson.M
	}{
		{
			name:   "equality with coercion",
			values: url.Values{"difficulty": {"easy"}, "duration": {"5"}, "secretTour": {"false"}},
			want:   bson.M{"difficulty": "easy", "duration": int64(5), "secretTour": false},
		},
		{
			name:   "comparison operators",
			values: url.Values{"price[gte]": {"500"}, "price[lt]": {"1500.5"}, "duration[gt]": {"3"}},
			want: bson.M{
				"price":    bson.M{"$gte": int64(500), "$lt": 1500.5},
				"duration": bson.M{"$gt": int64(3)},
			},
		},
		{
			name:   "unknown operator passes through",
			values: url.Values{"rating[ne]": {"4"}},
			want:   bson.M{"rating": bson.M{"ne": int64(4)}},
		},
		{
			name:   "numeric text is a number whatever the field",
			values: url.Values{"name": {"2024"}},
			want:   bson.M{"name": int64(2024)},
		},
		{
			name:   "reserved keys dropped",
			values: url.Values{"page": {"1"}, "limit": {"5"}, "sort": {"price"}, "fields": {"name"}, "name": {"x"}},
			want:   bson.M{"name": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.values).Filter().Query().Filter)
		})
	}
}

func TestSortAndFields(t *testing.T) {
	q := New(url.Values{}).Sort().LimitFields().Query()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.Sort)
	assert.Equal(t, bson.M{"__v": 0}, q.Projection)

	q = New(url.Values{
		"sort":   {"-ratingsAverage,price"},
		"fields": {"name, price"},
	}).Sort().LimitFields().Query()
	assert.Equal(t, bson.D{{Key: "ratingsAverage", Value: -1}, {Key: "price", Value: 1}}, q.Sort)
	assert.Equal(t, bson.M{"name": 1, "price": 1}, q.Projection)

	q = New(url.Values{"fields": {"-description"}}).LimitFields().Query()
	assert.Equal(t, bson.M{"description": 0}, q.Projection)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantErr   bool
		wantPage  int64
		wantSkip  int64
		wantLimit int64
	}{
		{name: "missing page", values: url.Values{"limit": {"5"}}, wantErr: true},
		{name: "missing limit", values: url.Values{"page": {"1"}}, wantErr: true},
		{name: "empty page", values: url.Values{"page": {""}, "limit": {"3"}}, wantErr: true},
		{name: "empty limit", values: url.Values{"page": {"1"}, "limit": {""}}, wantErr: true},
		{name: "in range", values: url.Values{"page": {"3"}, "limit": {"4"}}, wantPage: 3, wantSkip: 8, wantLimit: 4},
		{name: "limit capped", values: url.Values{"page": {"1"}, "limit": {"50"}}, wantPage: 1, wantLimit: MaxLimit},
		{name: "zero limit", values: url.Values{"page": {"2"}, "limit": {"0"}}, wantPage: 2, wantSkip: 10, wantLimit: MaxLimit},
		{name: "bad page", values: url.Values{"page": {"abc"}, "limit": {"2"}}, wantPage: 1, wantLimit: 2},
		{name: "negative page", values: url.Values{"page": {"-4"}, "limit": {"2"}}, wantPage: 1, wantLimit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.values)
			q, err := f.Build()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingPagination)
				assert.Equal(t, "No value specified for 'page' or 'limit'", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, f.Page())
			assert.Equal(t, tt.wantSkip, q.Skip)
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.LessOrEqual(t, q.Limit, int64(MaxLimit))
		})
	}
}
