package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// accounts es un recurso de prueba sin declaraciones: todo cae a las columnas.
func accounts() Table {
	return Table{
		Resource: "accounts",
		Cols: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "login", Type: TypeString},
			{Name: "email", Type: TypeString},
		},
	}
}

// events tiene columnas de todos los tipos y varias *_at.
func events() Table {
	return Table{
		Resource: "event_logs",
		Cols: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "name", Type: TypeString},
			{Name: "score", Type: TypeFloat},
			{Name: "public", Type: TypeBoolean},
			{Name: "ref", Type: TypeUUID},
			{Name: "begin_at", Type: TypeTime},
			{Name: "archived_at", Type: TypeTime},
			{Name: "created_at", Type: TypeTime},
			{Name: "updated_at", Type: TypeTime},
		},
	}
}

// where devuelve la representación textual de las condiciones de un Scope.
func where(t *testing.T, c Collection) string {
	t.Helper()
	s, err := AsScope(c)
	require.NoError(t, err)
	return sharedDomain.Format(s.Criteria())
}

func order(t *testing.T, c Collection) string {
	t.Helper()
	s, err := AsScope(c)
	require.NoError(t, err)
	return FormatSort(s.Order())
}

func assertInvalidParam(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParam)
}
