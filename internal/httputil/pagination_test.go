package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/allisson/roleguard/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		errorMsg       string
	}{
		{name: "default values", url: "/", expectedOffset: 0, expectedLimit: 50},
		{name: "valid custom values", url: "/?offset=10&limit=20", expectedOffset: 10, expectedLimit: 20},
		{name: "max limit", url: "/?limit=100", expectedOffset: 0, expectedLimit: 100},
		{
			name:     "offset negative",
			url:      "/?offset=-1",
			errorMsg: "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:     "offset not an integer",
			url:      "/?offset=abc",
			errorMsg: "invalid offset parameter: must be a non-negative integer",
		},
		{name: "limit zero", url: "/?limit=0", errorMsg: "invalid limit parameter: must be between 1 and 100"},
		{name: "limit exceeds max", url: "/?limit=101", errorMsg: "invalid limit parameter: must be between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			offset, limit, err := httputil.ParsePagination(c)

			if tt.errorMsg != "" {
				assert.EqualError(t, err, tt.errorMsg)
				assert.Zero(t, offset)
				assert.Zero(t, limit)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	t.Run("first window", func(t *testing.T) {
		window, page := httputil.Paginate(items, 0, 2)
		assert.Equal(t, []string{"a", "b"}, window)
		assert.Equal(t, httputil.Page{Offset: 0, Limit: 2, Total: 5}, page)
	})

	t.Run("window clipped at the end", func(t *testing.T) {
		window, _ := httputil.Paginate(items, 3, 10)
		assert.Equal(t, []string{"d", "e"}, window)
	})

	t.Run("offset past the end", func(t *testing.T) {
		window, page := httputil.Paginate(items, 9, 10)
		assert.NotNil(t, window)
		assert.Empty(t, window)
		assert.Equal(t, 5, page.Total)
	})
}
