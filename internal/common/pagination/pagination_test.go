package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{name: "no parameters", query: "", wantPage: 1, wantLimit: 20},
		{name: "page only", query: "?page=3", wantPage: 3, wantLimit: 20},
		{name: "limit only", query: "?limit=50", wantPage: 1, wantLimit: 50},
		{name: "both", query: "?page=2&limit=10", wantPage: 2, wantLimit: 10},
		{name: "limit at max", query: "?limit=100", wantPage: 1, wantLimit: 100},
		{name: "page zero", query: "?page=0", wantErr: true},
		{name: "negative page", query: "?page=-1", wantErr: true},
		{name: "page not a number", query: "?page=abc", wantErr: true},
		{name: "limit zero", query: "?limit=0", wantErr: true},
		{name: "limit above max", query: "?limit=101", wantErr: true},
		{name: "limit not a number", query: "?limit=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/posts"+tt.query, nil)

			params, err := ParseQueryParams(r)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 10, 20},
		{5, 25, 100},
	}

	for _, tt := range tests {
		got := Params{Page: tt.page, Limit: tt.limit}.Offset()
		assert.Equal(t, tt.want, got, "page=%d limit=%d", tt.page, tt.limit)
	}
}

func TestNewMetadata(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		limit     int
		wantPages int
	}{
		{name: "empty result still has one page", total: 0, limit: 20, wantPages: 1},
		{name: "partial page", total: 10, limit: 20, wantPages: 1},
		{name: "exact page", total: 20, limit: 20, wantPages: 1},
		{name: "one over", total: 21, limit: 20, wantPages: 2},
		{name: "many pages", total: 100, limit: 20, wantPages: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMetadata(tt.total, Params{Page: 1, Limit: tt.limit})

			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
		})
	}
}
