package query

import (
	"fmt"
	"strings"
)

// ---------------- Sort ----------------

// Sort es una clave de ordenación.
type Sort struct {
	Field     string
	Direction Direction
}

// Ordering es el ParsedParam de sort: campos en orden de aparición.
type Ordering []Sort

// SortAsc / SortDesc son atajos para declarar órdenes por defecto.
func SortAsc(field string) Sort  { return Sort{Field: field, Direction: Asc} }
func SortDesc(field string) Sort { return Sort{Field: field, Direction: Desc} }

// Direction devuelve la dirección de un campo.
func (o Ordering) Direction(field string) (Direction, bool) {
	for _, s := range o {
		if s.Field == field {
			return s.Direction, true
		}
	}
	return "", false
}

// ParseSort parsea "login,-id". Un '-' inicial indica orden descendente.
// Si un campo se repite conserva su primera posición y la dirección del
// último token. Falla en el primer campo no permitido.
func ParseSort(raw interface{}, allowed FieldSet) (Ordering, error) {
	var s string
	switch v := raw.(type) {
	case nil:
		return Ordering{}, nil
	case string:
		s = v
	default:
		return nil, &MalformedParamError{Capability: CapSort, Raw: raw}
	}

	tokens := splitValues(s)
	out := make(Ordering, 0, len(tokens))
	pos := make(map[string]int, len(tokens))
	for _, token := range tokens {
		dir := Asc
		field := token
		if strings.HasPrefix(token, "-") {
			dir = Desc
			field = token[1:]
		}
		if field == "" || !allowed.Has(field) {
			return nil, &UnknownSortFieldError{Field: field}
		}
		if i, seen := pos[field]; seen {
			out[i].Direction = dir
			continue
		}
		pos[field] = len(out)
		out = append(out, Sort{Field: field, Direction: dir})
	}
	return out, nil
}

// FormatSort es la inversa de ParseSort: Ordering{{login asc} {id desc}} -> "login,-id".
func FormatSort(o Ordering) string {
	parts := make([]string, len(o))
	for i, s := range o {
		if s.Direction == Desc {
			parts[i] = "-" + s.Field
		} else {
			parts[i] = s.Field
		}
	}
	return strings.Join(parts, ",")
}

// ApplySort añade las claves en orden. Una ordenación vacía no toca la colección.
func ApplySort(c Collection, o Ordering) Collection {
	if absent(c) || len(o) == 0 {
		return c
	}
	for _, s := range o {
		c = c.OrderBy(s.Field, s.Direction)
	}
	return c
}

// ---------------- Configuración compilada ----------------

// SortConfig es la configuración de sort de un recurso. Inmutable tras RegisterSort.
type SortConfig struct {
	resource Resource
	allowed  FieldSet
	defaults Ordering
}

// RegisterSort compila la configuración de sort. Sin defaults explícitos se
// ordena por id descendente siempre que id sea ordenable.
func RegisterSort(r Resource, defaults ...Sort) (*SortConfig, error) {
	allowed := AllowedFields(r, CapSort)

	def := make(Ordering, 0, len(defaults))
	if len(defaults) == 0 && allowed.Has("id") {
		def = append(def, SortDesc("id"))
	}
	seen := make(map[string]struct{}, len(defaults))
	for _, s := range defaults {
		if !allowed.Has(s.Field) {
			return nil, fmt.Errorf("%w: %q is not sortable", ErrInvalidDefaultSort, s.Field)
		}
		if s.Direction != Asc && s.Direction != Desc {
			return nil, fmt.Errorf("%w: direction %q for %q", ErrInvalidDefaultSort, s.Direction, s.Field)
		}
		if _, dup := seen[s.Field]; dup {
			return nil, fmt.Errorf("%w: %q declared twice", ErrInvalidDefaultSort, s.Field)
		}
		seen[s.Field] = struct{}{}
		def = append(def, s)
	}

	return &SortConfig{resource: r, allowed: allowed, defaults: def}, nil
}

func (sc *SortConfig) Key() Capability { return CapSort }

func (sc *SortConfig) Allowed() FieldSet { return sc.allowed }

// Defaults devuelve una copia de la ordenación por defecto.
func (sc *SortConfig) Defaults() Ordering {
	out := make(Ordering, len(sc.defaults))
	copy(out, sc.defaults)
	return out
}

// ParseRequest aplica los defaults solo cuando el parámetro está ausente.
func (sc *SortConfig) ParseRequest(raw interface{}) (Ordering, error) {
	if raw == nil || raw == "" {
		return sc.Defaults(), nil
	}
	return ParseSort(raw, sc.allowed)
}

func (sc *SortConfig) Parse(raw interface{}) (Step, error) {
	o, err := sc.ParseRequest(raw)
	if err != nil {
		return nil, err
	}
	return func(c Collection) (Collection, error) {
		return ApplySort(c, o), nil
	}, nil
}

func (sc *SortConfig) Describe() Description {
	return Description{
		Capability: CapSort,
		Resource:   resourceName(sc.resource),
		Fields:     sc.allowed.Names(),
		Default:    FormatSort(sc.defaults),
	}
}
