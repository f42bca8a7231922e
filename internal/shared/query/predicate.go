package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Predicados ----------------

// Predicate recibe la colección de forma explícita junto con los valores del
// campo y devuelve una colección nueva. Lo usan filter y search.
type Predicate func(c Collection, values []string) (Collection, error)

// RangePredicate recibe los dos extremos del intervalo por separado.
type RangePredicate func(c Collection, from, to string) (Collection, error)

// Entry es un predicado custom ya normalizado.
// AllowedValues vacío significa que se acepta cualquier valor.
type Entry[P any] struct {
	Predicate     P
	AllowedValues []string
	Description   string
}

// Registry asocia nombres de campo a predicados custom. Se construye una vez
// al registrar el recurso y después solo se lee.
type Registry[P any] struct {
	entries map[string]Entry[P]
	order   []string
}

func newRegistry[P any]() Registry[P] {
	return Registry[P]{entries: make(map[string]Entry[P])}
}

// Lookup busca el predicado de un campo.
func (r Registry[P]) Lookup(name string) (Entry[P], bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names devuelve los nombres en orden de registro.
func (r Registry[P]) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r Registry[P]) Len() int { return len(r.order) }

func (r *Registry[P]) add(name string, e Entry[P]) error {
	if r.entries == nil {
		r.entries = make(map[string]Entry[P])
	}
	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicatePredicate, name)
	}
	r.entries[name] = e
	r.order = append(r.order, name)
	return nil
}

// addIfAbsent lo usan los registros automáticos: un nombre explícito gana.
func (r *Registry[P]) addIfAbsent(name string, e Entry[P]) bool {
	if _, dup := r.entries[name]; dup {
		return false
	}
	_ = r.add(name, e)
	return true
}

// ---------------- Normalización ----------------

// Claves aceptadas en la forma mapa.
const (
	KeyPredicate     = "predicate"
	KeyAllowedValues = "allowed_values"
	KeyDescription   = "description"
)

// Normalize convierte los predicados adicionales declarados al registrar un
// recurso en un Registry. Cada valor puede ser:
//
//   - el predicado tal cual (P o una func con la misma firma);
//   - una lista []interface{} de 1 a 3 elementos: predicado, valores permitidos, descripción;
//   - un map[string]interface{} con claves predicate / allowed_values / description;
//   - un Entry[P] completo.
//
// Cualquier otra forma devuelve ErrCannotNormalize. Los nombres se registran
// en orden alfabético para que el resultado sea determinista.
func Normalize[P any](additional map[string]interface{}) (Registry[P], error) {
	reg := newRegistry[P]()

	names := make([]string, 0, len(additional))
	for name := range additional {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, err := normalizeEntry[P](name, additional[name])
		if err != nil {
			return Registry[P]{}, err
		}
		if err := reg.add(name, entry); err != nil {
			return Registry[P]{}, err
		}
	}
	return reg, nil
}

func normalizeEntry[P any](name string, raw interface{}) (Entry[P], error) {
	fail := func(reason string) (Entry[P], error) {
		return Entry[P]{}, fmt.Errorf("%w %q (%s): got %T", ErrCannotNormalize, name, reason, raw)
	}

	switch v := raw.(type) {
	case Entry[P]:
		if isNilFunc(v.Predicate) {
			return fail("missing predicate")
		}
		return v, nil

	case map[string]interface{}:
		var entry Entry[P]
		for key, val := range v {
			switch key {
			case KeyPredicate:
				pred, ok := asPredicate[P](val)
				if !ok {
					return fail("invalid predicate")
				}
				entry.Predicate = pred
			case KeyAllowedValues:
				allowed, ok := asStrings(val)
				if !ok {
					return fail("invalid allowed_values")
				}
				entry.AllowedValues = allowed
			case KeyDescription:
				desc, ok := val.(string)
				if !ok {
					return fail("invalid description")
				}
				entry.Description = desc
			default:
				return fail("unknown key " + key)
			}
		}
		if isNilFunc(entry.Predicate) {
			return fail("missing predicate")
		}
		return entry, nil

	case []interface{}:
		if len(v) == 0 || len(v) > 3 {
			return fail("list must have 1 to 3 elements")
		}
		pred, ok := asPredicate[P](v[0])
		if !ok {
			return fail("invalid predicate")
		}
		entry := Entry[P]{Predicate: pred}
		if len(v) > 1 && v[1] != nil {
			allowed, ok := asStrings(v[1])
			if !ok {
				return fail("invalid allowed_values")
			}
			entry.AllowedValues = allowed
		}
		if len(v) > 2 && v[2] != nil {
			desc, ok := v[2].(string)
			if !ok {
				return fail("invalid description")
			}
			entry.Description = desc
		}
		return entry, nil
	}

	if pred, ok := asPredicate[P](raw); ok {
		return Entry[P]{Predicate: pred}, nil
	}
	return fail("unsupported shape")
}

// asPredicate acepta P o una func literal con la misma firma.
func asPredicate[P any](v interface{}) (P, bool) {
	var zero P
	if v == nil {
		return zero, false
	}
	if p, ok := v.(P); ok {
		return p, !isNilFunc(p)
	}
	target := reflect.TypeOf((*P)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() || !rv.Type().ConvertibleTo(target) {
		return zero, false
	}
	return rv.Convert(target).Interface().(P), true
}

func isNilFunc(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && rv.IsNil()
}

func asStrings(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, true
	case []interface{}:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = fmt.Sprint(item)
		}
		return out, true
	}
	return nil, false
}

// ---------------- Opciones de registro ----------------

// Option registra predicados explícitos tras la normalización. Un nombre
// repetido es un error de configuración.
type Option[P any] func(r Resource, reg *Registry[P]) error

// WithPredicate registra un predicado custom con nombre.
func WithPredicate[P any](name string, pred P, allowed []string, description string) Option[P] {
	return func(_ Resource, reg *Registry[P]) error {
		if isNilFunc(pred) {
			return fmt.Errorf("%w %q: missing predicate", ErrCannotNormalize, name)
		}
		return reg.add(name, Entry[P]{Predicate: pred, AllowedValues: allowed, Description: description})
	}
}

// WithBoolPredicate registra name como filtro "true"/"false" sobre la
// presencia (NOT NULL) de column.
func WithBoolPredicate(name, column, description string) Option[Predicate] {
	return func(r Resource, reg *Registry[Predicate]) error {
		if description == "" {
			description = fmt.Sprintf("Return only %s with a %s", pluralLabel(r), column)
		}
		return reg.add(name, Entry[Predicate]{
			Predicate:     BoolPresence(column),
			AllowedValues: BoolValues(),
			Description:   description,
		})
	}
}

// BoolValues son los únicos valores que aceptan los predicados booleanos.
func BoolValues() []string {
	return []string{"true", "false"}
}

// ---------------- Predicados predefinidos ----------------

// BoolPresence: "true" exige column NOT NULL; cualquier otro valor, NULL.
func BoolPresence(column string) Predicate {
	return func(c Collection, values []string) (Collection, error) {
		if len(values) > 0 && values[0] == "true" {
			return c.Where(sharedDomain.NotNull(column)), nil
		}
		return c.Where(sharedDomain.IsNull(column)), nil
	}
}

// Temporal: "true" exige column >= ahora; cualquier otro valor, column < ahora.
func Temporal(column string, now func() time.Time) Predicate {
	if now == nil {
		now = time.Now
	}
	return func(c Collection, values []string) (Collection, error) {
		t := now().UTC()
		if len(values) > 0 && values[0] == "true" {
			return c.Where(sharedDomain.Gte(column, t)), nil
		}
		return c.Where(sharedDomain.Lt(column, t)), nil
	}
}

// registerBools es la expansión automática de filter: cada columna *_at
// filtrable (salvo created_at / updated_at) obtiene un filtro booleano con el
// nombre sin sufijo, y begin_at además el filtro temporal "future".
func registerBools(r Resource, filterable FieldSet, reg *Registry[Predicate], now func() time.Time) {
	label := pluralLabel(r)
	for _, field := range filterable.Names() {
		if field == "created_at" || field == "updated_at" || !strings.HasSuffix(field, "_at") {
			continue
		}
		name := strings.TrimSuffix(field, "_at")
		if name == "" {
			continue
		}
		reg.addIfAbsent(name, Entry[Predicate]{
			Predicate:     BoolPresence(field),
			AllowedValues: BoolValues(),
			Description:   fmt.Sprintf("Return only %s %s", name, label),
		})
		if field == "begin_at" {
			reg.addIfAbsent("future", Entry[Predicate]{
				Predicate:     Temporal(field, now),
				AllowedValues: BoolValues(),
				Description:   fmt.Sprintf("Return only %s which begin in the future", label),
			})
		}
	}
}

// checkAllowed valida los valores contra el conjunto permitido del predicado.
func checkAllowed(c Capability, field string, values, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		permitted[a] = struct{}{}
	}
	var rejected []string
	for _, v := range values {
		if _, ok := permitted[v]; !ok {
			rejected = append(rejected, v)
		}
	}
	if len(rejected) > 0 {
		return &InvalidCustomValueError{Capability: c, Field: field, Rejected: rejected, Allowed: allowed}
	}
	return nil
}
