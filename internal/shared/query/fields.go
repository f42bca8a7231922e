package query

import "strings"

// ---------------- Capacidades ----------------

// Capability identifica cada mini-DSL de listado. Su valor coincide con la
// clave del query param que la alimenta.
type Capability string

const (
	CapSort   Capability = "sort"
	CapFilter Capability = "filter"
	CapSearch Capability = "search"
	CapRange  Capability = "range"
	CapFuzzy  Capability = "fuzzy"
)

// ---------------- Columnas y recursos ----------------

type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeTime
	TypeUUID
	TypeOther
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	default:
		return "other"
	}
}

// Column describe un atributo persistido del recurso.
type Column struct {
	Name string
	Type ColumnType
}

// Resource es lo mínimo que el motor necesita de un modelo: su nombre
// (plural, p.ej. "users") y la lista completa de columnas.
type Resource interface {
	Name() string
	Columns() []Column
}

// FieldDeclarer es opcional. Un recurso que lo implementa puede restringir
// los campos permitidos de cada capacidad; ok=false delega en el fallback.
type FieldDeclarer interface {
	DeclaredFields(c Capability) (fields []string, ok bool)
}

// Table es una implementación declarativa de Resource + FieldDeclarer.
type Table struct {
	Resource string
	Cols     []Column
	Fields   map[Capability][]string
}

func (t Table) Name() string { return t.Resource }

func (t Table) Columns() []Column { return t.Cols }

func (t Table) DeclaredFields(c Capability) ([]string, bool) {
	fields, ok := t.Fields[c]
	return fields, ok
}

var (
	_ Resource      = Table{}
	_ FieldDeclarer = Table{}
)

// ---------------- FieldSet ----------------

// FieldSet es un conjunto ordenado e inmutable de nombres de campo.
type FieldSet struct {
	names []string
	index map[string]struct{}
}

// NewFieldSet conserva la primera aparición de cada nombre.
func NewFieldSet(names ...string) FieldSet {
	fs := FieldSet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, dup := fs.index[n]; dup {
			continue
		}
		fs.index[n] = struct{}{}
		fs.names = append(fs.names, n)
	}
	return fs
}

func (fs FieldSet) Has(name string) bool {
	_, ok := fs.index[name]
	return ok
}

// Names devuelve una copia, el FieldSet no se puede mutar desde fuera.
func (fs FieldSet) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

func (fs FieldSet) Len() int { return len(fs.names) }

// With devuelve un FieldSet nuevo con los nombres extra añadidos al final.
func (fs FieldSet) With(extra ...string) FieldSet {
	return NewFieldSet(append(fs.Names(), extra...)...)
}

func (fs FieldSet) String() string {
	return toSentence(fs.names)
}

// ---------------- Resolución de campos ----------------

// AllowedFields resuelve los campos permitidos de una capacidad:
// declaración explícita del recurso, luego el fallback de la capacidad
// y por último todas las columnas. Nunca falla.
func AllowedFields(r Resource, c Capability) FieldSet {
	if r == nil {
		return NewFieldSet()
	}
	if d, ok := r.(FieldDeclarer); ok {
		if fields, declared := d.DeclaredFields(c); declared {
			return NewFieldSet(fields...)
		}
	}

	switch c {
	case CapSearch, CapRange:
		return AllowedFields(r, CapFilter)
	case CapFuzzy:
		return AllowedFields(r, CapSearch)
	}
	return NewFieldSet(columnNames(r)...)
}

func columnNames(r Resource) []string {
	cols := r.Columns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// ColumnTypes indexa el tipo de cada columna del recurso.
func ColumnTypes(r Resource) map[string]ColumnType {
	types := make(map[string]ColumnType)
	if r == nil {
		return types
	}
	for _, col := range r.Columns() {
		types[col.Name] = col.Type
	}
	return types
}

// pluralLabel devuelve una etiqueta legible para descripciones ("task logs").
func pluralLabel(r Resource) string {
	if r == nil || r.Name() == "" {
		return "records"
	}
	return strings.ReplaceAll(strings.ToLower(r.Name()), "_", " ")
}
