package query

import (
	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Filter ----------------

// FilterConfig es la configuración de filter de un recurso: campos filtrables
// más los predicados custom registrados (incluidos los booleanos automáticos).
type FilterConfig struct {
	resource Resource
	allowed  FieldSet
	registry Registry[Predicate]
	types    map[string]ColumnType
}

// RegisterFilter compila la configuración de filter.
//
// Orden de registro: predicados adicionales normalizados, opciones explícitas y
// por último la expansión automática de campos *_at, que nunca pisa un nombre
// ya registrado. Los campos permitidos se calculan después de la expansión.
func RegisterFilter(r Resource, additional map[string]interface{}, opts ...Option[Predicate]) (*FilterConfig, error) {
	reg, err := Normalize[Predicate](additional)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(r, &reg); err != nil {
			return nil, err
		}
	}

	filterable := AllowedFields(r, CapFilter)
	registerBools(r, filterable, &reg, nil)

	return &FilterConfig{
		resource: r,
		allowed:  filterable.With(reg.Names()...),
		registry: reg,
		types:    ColumnTypes(r),
	}, nil
}

func (fc *FilterConfig) Key() Capability { return CapFilter }

func (fc *FilterConfig) Allowed() FieldSet { return fc.allowed }

func (fc *FilterConfig) Registry() Registry[Predicate] { return fc.registry }

// ParseFilter valida {campo: "v1,v2"} contra allowed.
func ParseFilter(raw interface{}, allowed FieldSet) (Parsed, error) {
	return parseParams(CapFilter, raw, allowed)
}

// ApplyFilter compone los campos en orden con AND. Un campo con predicado
// custom delega en él; si no, un valor es igualdad y varios son pertenencia.
// Los valores de campos built-in deben poder convertirse al tipo de su columna.
// Un campo sin valores se ignora, tenga o no predicado custom.
func ApplyFilter(c Collection, p Parsed, reg Registry[Predicate], types map[string]ColumnType) (Collection, error) {
	if absent(c) {
		return c, nil
	}
	for _, fv := range p {
		if len(fv.Values) == 0 {
			continue
		}
		if entry, ok := reg.Lookup(fv.Field); ok {
			if err := checkAllowed(CapFilter, fv.Field, fv.Values, entry.AllowedValues); err != nil {
				return nil, err
			}
			next, err := entry.Predicate(c, fv.Values)
			if err != nil {
				return nil, err
			}
			c = next
			continue
		}

		for _, v := range fv.Values {
			if err := CheckValue(types[fv.Field], v); err != nil {
				return nil, &InvalidFilterValueError{Field: fv.Field, Value: v, Err: err}
			}
		}

		switch len(fv.Values) {
		case 1:
			c = c.Where(sharedDomain.Eq(fv.Field, fv.Values[0]))
		default:
			c = c.Where(sharedDomain.InStrings(fv.Field, fv.Values))
		}
	}
	return c, nil
}

func (fc *FilterConfig) Parse(raw interface{}) (Step, error) {
	p, err := ParseFilter(raw, fc.allowed)
	if err != nil {
		return nil, err
	}
	return func(c Collection) (Collection, error) {
		return ApplyFilter(c, p, fc.registry, fc.types)
	}, nil
}

func (fc *FilterConfig) Describe() Description {
	return Description{
		Capability: CapFilter,
		Resource:   resourceName(fc.resource),
		Fields:     fc.allowed.Names(),
		Predicates: describeRegistry(fc.registry),
	}
}
