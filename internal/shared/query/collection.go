package query

import (
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Collection ----------------

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Collection es el query builder abstracto sobre el que se componen las
// restricciones. Las implementaciones son inmutables: cada llamada devuelve
// una colección nueva y deja intacta la receptora.
//
// where / where_not / or / between / match se expresan con los constructores
// de sharedDomain (Eq, In, Not, Or, Between, Contains, IsNull...).
type Collection interface {
	// Where añade condiciones que se combinan con AND.
	Where(conds ...sharedDomain.Criteria) Collection
	// OrderBy añade una clave de ordenación al final de las existentes.
	OrderBy(field string, dir Direction) Collection
	// Empty indica si es el centinela vacío, que nunca devuelve filas.
	Empty() bool
	// None devuelve el centinela vacío del mismo recurso.
	None() Collection
}

// absent: sobre una colección nula o vacía los aplicadores no hacen nada.
func absent(c Collection) bool {
	return c == nil || c.Empty()
}

// ---------------- Scope ----------------

// Scope es la Collection por defecto: acumula criterios neutrales y
// ordenación sin ejecutar nada. Los repositorios la traducen a SQL o BSON.
type Scope struct {
	resource string
	conds    []sharedDomain.Criteria
	order    []Sort
	none     bool
}

// NewScope crea un scope sin restricciones para el recurso dado.
func NewScope(resource string) Scope {
	return Scope{resource: resource}
}

func (s Scope) Where(conds ...sharedDomain.Criteria) Collection {
	next := s
	next.conds = append(s.conds[:len(s.conds):len(s.conds)], conds...)
	return next
}

func (s Scope) OrderBy(field string, dir Direction) Collection {
	next := s
	next.order = append(s.order[:len(s.order):len(s.order)], Sort{Field: field, Direction: dir})
	return next
}

func (s Scope) Empty() bool { return s.none }

func (s Scope) None() Collection {
	return Scope{resource: s.resource, none: true}
}

// Resource devuelve el nombre del recurso.
func (s Scope) Resource() string { return s.resource }

// Criteria combina todas las condiciones acumuladas con AND.
func (s Scope) Criteria() sharedDomain.CompositeCriteria {
	conds := make([]sharedDomain.Criteria, len(s.conds))
	copy(conds, s.conds)
	return sharedDomain.And(conds...)
}

// Order devuelve una copia de las claves de ordenación.
func (s Scope) Order() Ordering {
	out := make(Ordering, len(s.order))
	copy(out, s.order)
	return out
}

// Key es una representación canónica del scope, apta como clave de caché.
func (s Scope) Key() string {
	var b strings.Builder
	b.WriteString(s.resource)
	if s.none {
		b.WriteString("|none")
		return b.String()
	}
	if where := sharedDomain.Encode(s.Criteria()); where != "" {
		b.WriteString("|where:")
		b.WriteString(where)
	}
	if len(s.order) > 0 {
		b.WriteString("|order:")
		b.WriteString(FormatSort(s.order))
	}
	return b.String()
}

// String es la forma legible para logs; no sirve como clave.
func (s Scope) String() string {
	out := s.resource
	if s.none {
		return out + "|none"
	}
	if where := sharedDomain.Format(s.Criteria()); where != "" {
		out += "|where:" + where
	}
	if len(s.order) > 0 {
		out += "|order:" + FormatSort(s.order)
	}
	return out
}

var _ Collection = Scope{}

// AsScope recupera el Scope concreto tras pasar por los aplicadores.
func AsScope(c Collection) (Scope, error) {
	switch v := c.(type) {
	case Scope:
		return v, nil
	case *Scope:
		if v != nil {
			return *v, nil
		}
	}
	return Scope{}, fmt.Errorf("unsupported collection type %T", c)
}
