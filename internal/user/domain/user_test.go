package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	t.Run("válido", func(t *testing.T) {
		u, err := NewUser(" ana ", "ana@example.com", 30, false, now)

		require.NoError(t, err)
		assert.Equal(t, "ana", u.Login)
		assert.Equal(t, time.UTC, u.CreatedAt.Location())
		assert.Equal(t, u.CreatedAt, u.UpdatedAt)
		assert.False(t, u.Banned())
	})

	tests := []struct {
		name  string
		login string
		email string
		age   int
	}{
		{"sin login", "", "a@b.com", 1},
		{"email inválido", "ana", "ana", 1},
		{"edad negativa", "ana", "a@b.com", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.login, tt.email, tt.age, false, now)
			assert.ErrorIs(t, err, ErrInvalidUser)
		})
	}
}

func TestUser_Ban(t *testing.T) {
	u, err := NewUser("bob", "bob@example.com", 20, false, time.Now())
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	u.Ban(at)

	assert.True(t, u.Banned())
	assert.Equal(t, at, *u.BannedAt)
	assert.Equal(t, at, u.UpdatedAt)
}

func TestCompileQueries(t *testing.T) {
	// Arrange
	scopes, err := CompileQueries()
	require.NoError(t, err)

	// Act
	c, err := scopes.Apply(query.NewScope(Resource), query.RawParams{
		"filter": query.Pairs{{Key: "active", Value: "true"}, {Key: "admin", Value: "false"}},
		"search": map[string]string{"domain": "a.com,b.org"},
	})
	require.NoError(t, err)
	s, err := query.AsScope(c)
	require.NoError(t, err)

	// Assert
	assert.Equal(t,
		"banned_at IS NULL AND admin = false AND (email ILIKE %@a.com OR email ILIKE %@b.org)",
		sharedDomain.Format(s.Criteria()))
	assert.Equal(t, query.Ordering{query.SortDesc("created_at")}, s.Order())
}

func TestCompileQueries_Describe(t *testing.T) {
	scopes, err := CompileQueries()
	require.NoError(t, err)

	desc := scopes.Describe()

	assert.Equal(t, []string{"filter", "search", "range", "fuzzy", "sort"}, scopes.Keys())
	require.Len(t, desc, 5)
	names := make([]string, 0, len(desc[0].Predicates))
	for _, p := range desc[0].Predicates {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"active", "banned"}, names)
	assert.Equal(t, "-created_at", desc[4].Default)
}

func TestCompileQueries_RejectsUnknownActiveValue(t *testing.T) {
	scopes, err := CompileQueries()
	require.NoError(t, err)

	_, err = scopes.Apply(query.NewScope(Resource), query.RawParams{
		"filter": query.Pairs{{Key: "active", Value: "maybe"}},
	})

	var invalid *query.InvalidCustomValueError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, query.ErrInvalidParam)
}
