package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

func onlyLogin(c Collection, values []string) (Collection, error) {
	return c.Where(sharedDomain.Eq("login", values[0])), nil
}

func TestNormalize_Shapes(t *testing.T) {
	// Arrange
	additional := map[string]interface{}{
		"bare":    Predicate(onlyLogin),
		"literal": func(c Collection, values []string) (Collection, error) { return c, nil },
		"list":    []interface{}{Predicate(onlyLogin), []string{"x", "y"}, "list desc"},
		"short":   []interface{}{onlyLogin},
		"mapping": map[string]interface{}{
			KeyPredicate:     onlyLogin,
			KeyAllowedValues: []interface{}{1, 2},
		},
		"entry": Entry[Predicate]{Predicate: onlyLogin, Description: "ready"},
	}

	// Act
	reg, err := Normalize[Predicate](additional)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"bare", "entry", "list", "literal", "mapping", "short"}, reg.Names())

	bare, _ := reg.Lookup("bare")
	assert.NotNil(t, bare.Predicate)
	assert.Empty(t, bare.AllowedValues)
	assert.Empty(t, bare.Description)

	list, _ := reg.Lookup("list")
	assert.Equal(t, []string{"x", "y"}, list.AllowedValues)
	assert.Equal(t, "list desc", list.Description)

	mapping, _ := reg.Lookup("mapping")
	assert.Equal(t, []string{"1", "2"}, mapping.AllowedValues)
	assert.Empty(t, mapping.Description)

	entry, _ := reg.Lookup("entry")
	assert.Equal(t, "ready", entry.Description)

	literal, _ := reg.Lookup("literal")
	c, err := literal.Predicate(NewScope("accounts"), nil)
	require.NoError(t, err)
	assert.Equal(t, "", where(t, c))
}

func TestNormalize_RangeFunctions(t *testing.T) {
	reg, err := Normalize[RangePredicate](map[string]interface{}{
		"window": func(c Collection, from, to string) (Collection, error) {
			return c.Where(sharedDomain.Between("id", from, to)), nil
		},
	})
	require.NoError(t, err)

	e, ok := reg.Lookup("window")
	require.True(t, ok)
	c, err := e.Predicate(NewScope("accounts"), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "id BETWEEN 1 AND 2", where(t, c))
}

func TestNormalize_Rejects(t *testing.T) {
	tests := map[string]interface{}{
		"número":                42,
		"string":                "login = 1",
		"lista vacía":           []interface{}{},
		"lista larga":           []interface{}{onlyLogin, nil, "", "extra"},
		"firma equivocada":      func(values []string) error { return nil },
		"clave desconocida":     map[string]interface{}{KeyPredicate: onlyLogin, "other": 1},
		"mapa sin predicado":    map[string]interface{}{KeyDescription: "nothing"},
		"allowed_values raro":   []interface{}{onlyLogin, "true"},
		"descripción no string": []interface{}{onlyLogin, nil, 3},
		"predicado nil":         Predicate(nil),
		"entry sin predicado":   Entry[Predicate]{Description: "x"},
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize[Predicate](map[string]interface{}{"field": raw})
			assert.ErrorIs(t, err, ErrCannotNormalize)
		})
	}
}

func TestOptions_DuplicateIsFatal(t *testing.T) {
	// Arrange
	reg, err := Normalize[Predicate](map[string]interface{}{"active": onlyLogin})
	require.NoError(t, err)

	// Act
	err = WithPredicate[Predicate]("active", onlyLogin, nil, "")(accounts(), &reg)

	// Assert
	assert.ErrorIs(t, err, ErrDuplicatePredicate)
	assert.False(t, errors.Is(err, ErrInvalidParam))
}

func TestWithBoolPredicate(t *testing.T) {
	reg := newRegistry[Predicate]()

	require.NoError(t, WithBoolPredicate("banned", "banned_at", "")(accounts(), &reg))

	e, ok := reg.Lookup("banned")
	require.True(t, ok)
	assert.Equal(t, []string{"true", "false"}, e.AllowedValues)
	assert.Equal(t, "Return only accounts with a banned_at", e.Description)
}

func TestBoolPresence(t *testing.T) {
	pred := BoolPresence("banned_at")
	base := NewScope("accounts")

	yes, err := pred(base, []string{"true"})
	require.NoError(t, err)
	no, err := pred(base, []string{"false"})
	require.NoError(t, err)

	assert.Equal(t, "banned_at IS NOT NULL", where(t, yes))
	assert.Equal(t, "banned_at IS NULL", where(t, no))
}

func TestTemporal(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	pred := Temporal("begin_at", func() time.Time { return now })
	base := NewScope("events")

	future, err := pred(base, []string{"true"})
	require.NoError(t, err)
	past, err := pred(base, []string{"false"})
	require.NoError(t, err)

	assert.Equal(t, "begin_at >= 2024-05-01T10:00:00Z", where(t, future))
	assert.Equal(t, "begin_at < 2024-05-01T10:00:00Z", where(t, past))
}

func TestRegisterBools(t *testing.T) {
	// Arrange
	reg, err := Normalize[Predicate](map[string]interface{}{"archived": onlyLogin})
	require.NoError(t, err)

	// Act
	registerBools(events(), AllowedFields(events(), CapFilter), &reg, nil)

	// Assert
	assert.Equal(t, []string{"archived", "begin", "future"}, reg.Names())

	archived, _ := reg.Lookup("archived")
	assert.Empty(t, archived.AllowedValues, "el registro explícito gana")

	begin, _ := reg.Lookup("begin")
	assert.Equal(t, "Return only begin event logs", begin.Description)

	future, _ := reg.Lookup("future")
	assert.Equal(t, []string{"true", "false"}, future.AllowedValues)
}

func TestCheckAllowed(t *testing.T) {
	assert.NoError(t, checkAllowed(CapFilter, "any", []string{"x"}, nil))
	assert.NoError(t, checkAllowed(CapFilter, "active", []string{"true", "false"}, BoolValues()))

	err := checkAllowed(CapFilter, "active", []string{"maybe", "true", "nope"}, BoolValues())
	var invalid *InvalidCustomValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"maybe", "nope"}, invalid.Rejected)
	assert.Equal(t, "value maybe and nope is not allowed for filter active, can be true and false", err.Error())
}
