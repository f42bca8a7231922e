package domain

import (
	"fmt"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

// Resource es el nombre de la tabla y de las claves de caché de listados.
const Resource = "users"

// UserTable declara columnas y campos consultables de User.
// range y fuzzy no se declaran: heredan de filter y de search.
var UserTable = query.Table{
	Resource: Resource,
	Cols: []query.Column{
		{Name: "id", Type: query.TypeUUID},
		{Name: "login", Type: query.TypeString},
		{Name: "email", Type: query.TypeString},
		{Name: "age", Type: query.TypeInteger},
		{Name: "admin", Type: query.TypeBoolean},
		{Name: "created_at", Type: query.TypeTime},
		{Name: "updated_at", Type: query.TypeTime},
		{Name: "banned_at", Type: query.TypeTime},
	},
	Fields: map[query.Capability][]string{
		query.CapFilter: {"id", "login", "email", "age", "admin", "created_at", "banned_at"},
		query.CapSearch: {"login", "email"},
		query.CapSort:   {"login", "email", "age", "created_at"},
	},
}

// ---------------- Predicados custom ----------------

func activePredicate(c query.Collection, values []string) (query.Collection, error) {
	if len(values) == 0 {
		return c, nil
	}
	return c.Where(ActiveCriteria{Active: values[0] == "true"}), nil
}

func emailDomainPredicate(c query.Collection, values []string) (query.Collection, error) {
	if len(values) == 0 {
		return c, nil
	}
	domains := make([]sharedDomain.Criteria, len(values))
	for i, v := range values {
		domains[i] = EmailDomainCriteria{Domain: v}
	}
	return c.Where(sharedDomain.Or(domains...)), nil
}

// QuerySetup devuelve la configuración de consultas de /users:
//   - filter[active]=true|false  usuarios sin / con baneo
//   - filter[banned]=true|false  generado a partir de banned_at
//   - search[domain]=a.com,b.org email en alguno de los dominios
//   - fuzzy sobre login y email
//   - orden por defecto -created_at
func QuerySetup() query.Setup {
	return query.Setup{
		DefaultSort: []query.Sort{query.SortDesc("created_at")},
		FilterOptions: []query.Option[query.Predicate]{
			query.WithPredicate[query.Predicate]("active", activePredicate, query.BoolValues(),
				"Return only users which are not banned"),
		},
		Search: map[string]interface{}{
			"domain": map[string]interface{}{
				"predicate":   emailDomainPredicate,
				"description": "Return only users whose email belongs to one of the given domains",
			},
		},
		Fuzzy: true,
	}
}

// CompileQueries compila los hooks de /users. Un error aquí es de configuración.
func CompileQueries() (*query.Scopes, error) {
	scopes, err := query.Compile(UserTable, QuerySetup())
	if err != nil {
		return nil, fmt.Errorf("users query setup: %w", err)
	}
	return scopes, nil
}
