package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

type level string

type person struct {
	ID       int
	Login    string
	Level    level
	BannedAt *time.Time
}

var personTable = query.Table{
	Resource: "people",
	Cols: []query.Column{
		{Name: "id", Type: query.TypeInteger},
		{Name: "login", Type: query.TypeString},
		{Name: "level", Type: query.TypeString},
		{Name: "banned_at", Type: query.TypeTime},
	},
}

func personRecord(p person) Record {
	return Record{"id": p.ID, "login": p.Login, "level": p.Level, "banned_at": p.BannedAt}
}

func fixtures() []person {
	banned := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []person{
		{ID: 1, Login: "Ana", Level: "gold"},
		{ID: 2, Login: "bob", Level: "silver", BannedAt: &banned},
		{ID: 3, Login: "carla", Level: "gold"},
		{ID: 4, Login: "dani"},
	}
}

func ids(ps []person) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func run(t *testing.T, scope query.Collection, page query.Page) []int {
	t.Helper()
	s, err := query.AsScope(scope)
	require.NoError(t, err)
	got, err := Select(NewMatcher(personTable), fixtures(), s, page, personRecord)
	require.NoError(t, err)
	return ids(got)
}

func TestSelect_Criteria(t *testing.T) {
	base := query.NewScope("people")

	tests := []struct {
		name     string
		scope    query.Collection
		expected []int
	}{
		{"sin condiciones", base, []int{1, 2, 3, 4}},
		{"igualdad con coerción", base.Where(sharedDomain.Eq("id", "3")), []int{3}},
		{"pertenencia", base.Where(sharedDomain.InStrings("level", []string{"gold", "bronze"})), []int{1, 3}},
		{"contiene sin mayúsculas", base.Where(sharedDomain.Contains("login", "AN")), []int{1, 4}},
		{"intervalo", base.Where(sharedDomain.Between("id", int64(2), int64(3))), []int{2, 3}},
		{"nulo", base.Where(sharedDomain.IsNull("banned_at")), []int{1, 3, 4}},
		{"no nulo", base.Where(sharedDomain.NotNull("banned_at")), []int{2}},
		{"fecha", base.Where(sharedDomain.Gte("banned_at", "2024-01-01")), []int{2}},
		{"OR", base.Where(sharedDomain.Or(sharedDomain.Eq("id", "1"), sharedDomain.Eq("login", "bob"))), []int{1, 2}},
		{"NOT", base.Where(sharedDomain.Not(sharedDomain.Eq("level", "gold"))), []int{2, 4}},
		{"campo vacío no es igual", base.Where(sharedDomain.Ne("level", "gold")), []int{2, 4}},
		{"vacío", base.None(), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, run(t, tt.scope, query.Page{}))
		})
	}
}

func TestSelect_OrderAndPage(t *testing.T) {
	scope := query.NewScope("people").OrderBy("level", query.Asc).OrderBy("id", query.Desc)

	assert.Equal(t, []int{4, 3, 1, 2}, run(t, scope, query.Page{}))
	assert.Equal(t, []int{3, 1}, run(t, scope, query.Page{Limit: 2, Offset: 1}))
}

func TestMatch_UnsupportedOperator(t *testing.T) {
	_, err := NewMatcher(personTable).Match(sharedDomain.Criterion{Field: "id", Op: "~", Value: 1}, Record{"id": 1})

	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}
