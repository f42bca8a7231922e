package httpquery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/hexaquery/internal/shared/query"
)

func TestFromRawQuery_KeepsOrder(t *testing.T) {
	// Act
	params, err := FromRawQuery("range[id]=1,5&filter[login]=a,b&sort=-id&filter[admin]=true&fuzzy=ana+m&other=1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, query.Pairs{{Key: "login", Value: "a,b"}, {Key: "admin", Value: "true"}}, params["filter"])
	assert.Equal(t, query.Pairs{{Key: "id", Value: "1,5"}}, params["range"])
	assert.Equal(t, "-id", params["sort"])
	assert.Equal(t, "ana m", params["fuzzy"])
	assert.NotContains(t, params, "other")
}

func TestFromRawQuery_Escaped(t *testing.T) {
	params, err := FromRawQuery("filter%5Bemail%5D=a%40b.com&sort=login")

	require.NoError(t, err)
	assert.Equal(t, query.Pairs{{Key: "email", Value: "a@b.com"}}, params["filter"])
	assert.Equal(t, "login", params["sort"])
}

func TestFromRawQuery_UnbracketedFilterIsRejectedLater(t *testing.T) {
	// Arrange
	params, err := FromRawQuery("filter=login")
	require.NoError(t, err)
	fc, err := query.RegisterFilter(query.Table{Resource: "users", Cols: []query.Column{{Name: "login"}}}, nil)
	require.NoError(t, err)

	// Act
	_, err = fc.Parse(params["filter"])

	// Assert
	var malformed *query.MalformedParamError
	assert.ErrorAs(t, err, &malformed)
}

func TestFromRawQuery_BareAndBracketedIsMalformed(t *testing.T) {
	for _, raw := range []string{"filter=x&filter[login]=a", "filter[login]=a&filter=x"} {
		t.Run(raw, func(t *testing.T) {
			_, err := FromRawQuery(raw)

			var malformed *query.MalformedParamError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, query.CapFilter, malformed.Capability)
			assert.Equal(t, "filter=x", malformed.Raw)
			assert.ErrorIs(t, err, query.ErrInvalidParam)
		})
	}
}

func TestFromRawQuery_BadEscape(t *testing.T) {
	_, err := FromRawQuery("filter[login]=%zz")

	assert.ErrorIs(t, err, query.ErrInvalidParam)
}

func TestPageFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		url      string
		expected query.Page
		wantErr  bool
	}{
		{"sin paginación", "/users", query.Page{}, false},
		{"limit y offset", "/users?limit=10&offset=20", query.Page{Limit: 10, Offset: 20}, false},
		{"negativo", "/users?offset=-1", query.Page{}, true},
		{"no numérico", "/users?limit=abc", query.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			page, err := PageFrom(c)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				assert.Equal(t, http.StatusBadRequest, StatusFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFor(nil))
	assert.Equal(t, http.StatusBadRequest, StatusFor(&query.UnknownSortFieldError{Field: "x"}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("db down")))
}
