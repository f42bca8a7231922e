package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileAccounts(t *testing.T) *Scopes {
	t.Helper()
	scopes, err := Compile(accounts(), Setup{Fuzzy: true})
	require.NoError(t, err)
	return scopes
}

func TestScopes_Apply(t *testing.T) {
	// Arrange
	scopes := compileAccounts(t)
	params := RawParams{
		"filter": Pairs{{Key: "login", Value: "a,b"}, {Key: "id", Value: "5"}},
		"range":  map[string]string{"id": "1,5"},
		"sort":   "login,-id",
		"page":   "2",
	}

	// Act
	c, err := scopes.Apply(NewScope("accounts"), params)

	// Assert
	require.NoError(t, err)
	s, err := AsScope(c)
	require.NoError(t, err)
	assert.Equal(t, `accounts|where:login IN (s:"a", s:"b") AND id = s:"5" AND id BETWEEN i:1 AND i:5|order:login,-id`, s.Key())
	assert.Equal(t, "accounts|where:login IN (a, b) AND id = 5 AND id BETWEEN 1 AND 5|order:login,-id", s.String())
}

func TestScope_KeyDistinguishesValuesWithSeparators(t *testing.T) {
	// Arrange
	fc, err := RegisterFilter(accounts(), nil)
	require.NoError(t, err)
	key := func(pairs Pairs) string {
		step, err := fc.Parse(pairs)
		require.NoError(t, err)
		c, err := step(NewScope("accounts"))
		require.NoError(t, err)
		s, err := AsScope(c)
		require.NoError(t, err)
		return s.Key()
	}

	// Act
	joined := key(Pairs{{Key: "login", Value: "x AND id = 5"}})
	split := key(Pairs{{Key: "login", Value: "x"}, {Key: "id", Value: "5"}})

	// Assert
	assert.NotEqual(t, joined, split)
	assert.Equal(t, `accounts|where:login = s:"x AND id = 5"`, joined)
}

func TestScopes_EmptyParamsApplyOnlyDefaultSort(t *testing.T) {
	scopes := compileAccounts(t)

	c, err := scopes.Apply(NewScope("accounts"), RawParams{})

	require.NoError(t, err)
	assert.Equal(t, "", where(t, c))
	assert.Equal(t, "-id", order(t, c))
}

func TestScopes_ParseErrorsAbortBeforeApply(t *testing.T) {
	// Arrange
	scopes, err := Compile(accounts(), Setup{
		Filter: map[string]interface{}{
			"spy": func(c Collection, values []string) (Collection, error) {
				t.Fatal("no debería aplicarse ningún predicado")
				return c, nil
			},
		},
	})
	require.NoError(t, err)

	// Act
	_, err = scopes.Apply(NewScope("accounts"), RawParams{
		"filter": map[string]string{"spy": "1"},
		"sort":   "password",
	})

	// Assert
	var unknown *UnknownSortFieldError
	require.ErrorAs(t, err, &unknown)
}

func TestScopes_NilCollection(t *testing.T) {
	scopes := compileAccounts(t)

	c, err := scopes.Apply(nil, RawParams{"filter": map[string]string{"id": "1"}, "sort": "id"})

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestScopes_FuzzyNoneShortCircuits(t *testing.T) {
	r := accounts()
	r.Fields = map[Capability][]string{CapFuzzy: {"id"}}
	scopes, err := Compile(r, Setup{Fuzzy: true})
	require.NoError(t, err)

	c, err := scopes.Apply(NewScope("accounts"), RawParams{"fuzzy": "abc", "sort": "login"})

	require.NoError(t, err)
	s, _ := AsScope(c)
	assert.Equal(t, "accounts|none", s.Key())
}

func TestNewScopes_DuplicateKey(t *testing.T) {
	a, err := RegisterSort(accounts())
	require.NoError(t, err)
	b, err := RegisterSort(accounts())
	require.NoError(t, err)

	_, err = NewScopes(a, b)

	assert.ErrorIs(t, err, ErrDuplicateHook)
}

func TestCompile_SetupErrorsAreWrapped(t *testing.T) {
	_, err := Compile(accounts(), Setup{Range: map[string]interface{}{"x": "nope"}})
	assert.ErrorIs(t, err, ErrCannotNormalize)
	assert.Contains(t, err.Error(), "range:")

	_, err = Compile(accounts(), Setup{DefaultSort: []Sort{SortAsc("password")}})
	assert.ErrorIs(t, err, ErrInvalidDefaultSort)
}

func TestScopes_Describe(t *testing.T) {
	scopes := compileAccounts(t)

	d := scopes.Describe()

	assert.Equal(t, []string{"filter", "search", "range", "fuzzy", "sort"}, scopes.Keys())
	require.Len(t, d, 5)
	assert.Equal(t, "-id", d[4].Default)
	assert.Equal(t, []string{"id", "login", "email"}, d[0].Fields)
}

func TestScope_IsImmutable(t *testing.T) {
	base := NewScope("accounts")
	first := base.OrderBy("id", Asc)
	_ = first.OrderBy("login", Desc)
	second := first.OrderBy("email", Asc)

	assert.Equal(t, "", order(t, base))
	assert.Equal(t, "id", order(t, first))
	assert.Equal(t, "id,email", order(t, second))
}
