package domain

import (
	"fmt"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

const Resource = "tasks"

// TaskTable declara columnas y campos consultables de Task. begin_at y
// completed_at generan los filtros booleanos begin, future y completed.
var TaskTable = query.Table{
	Resource: Resource,
	Cols: []query.Column{
		{Name: "id", Type: query.TypeUUID},
		{Name: "title", Type: query.TypeString},
		{Name: "description", Type: query.TypeString},
		{Name: "assignee_id", Type: query.TypeUUID},
		{Name: "status", Type: query.TypeString},
		{Name: "priority", Type: query.TypeInteger},
		{Name: "begin_at", Type: query.TypeTime},
		{Name: "completed_at", Type: query.TypeTime},
		{Name: "created_at", Type: query.TypeTime},
		{Name: "updated_at", Type: query.TypeTime},
	},
	Fields: map[query.Capability][]string{
		query.CapFilter: {"id", "title", "assignee_id", "priority", "begin_at", "completed_at", "created_at"},
		query.CapSearch: {"title", "description"},
		query.CapRange:  {"priority", "begin_at", "completed_at", "created_at"},
		query.CapSort:   {"title", "status", "priority", "begin_at", "created_at"},
	},
}

// ---------------- Predicados custom ----------------

func statusPredicate(c query.Collection, values []string) (query.Collection, error) {
	if len(values) == 0 {
		return c, nil
	}
	return c.Where(sharedDomain.InStrings("status", values)), nil
}

// windowPredicate: tareas que empiezan y terminan dentro de [from, to].
func windowPredicate(c query.Collection, from, to string) (query.Collection, error) {
	start, err := query.ParseTime(from)
	if err != nil {
		return nil, &query.InvalidRangeValueError{Field: "window", From: from, To: to, Err: err}
	}
	end, err := query.ParseTime(to)
	if err != nil {
		return nil, &query.InvalidRangeValueError{Field: "window", From: from, To: to, Err: err}
	}
	return c.Where(
		sharedDomain.Gte("begin_at", start),
		sharedDomain.Lte("completed_at", end),
	), nil
}

// QuerySetup devuelve la configuración de consultas de /tasks.
func QuerySetup() query.Setup {
	return query.Setup{
		DefaultSort: []query.Sort{query.SortDesc("created_at")},
		Filter: map[string]interface{}{
			"status": query.Entry[query.Predicate]{
				Predicate:     statusPredicate,
				AllowedValues: Statuses(),
				Description:   "Return only tasks in one of the given statuses",
			},
		},
		Range: map[string]interface{}{
			"window": []interface{}{windowPredicate, nil, "Return only tasks which begin and complete between the given dates"},
		},
		Fuzzy: true,
	}
}

func CompileQueries() (*query.Scopes, error) {
	scopes, err := query.Compile(TaskTable, QuerySetup())
	if err != nil {
		return nil, fmt.Errorf("tasks query setup: %w", err)
	}
	return scopes, nil
}
