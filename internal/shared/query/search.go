package query

import (
	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Search ----------------

type SearchConfig struct {
	resource Resource
	allowed  FieldSet
	registry Registry[Predicate]
}

// RegisterSearch compila la configuración de search. Sin declaración propia
// los campos buscables son los filtrables.
func RegisterSearch(r Resource, additional map[string]interface{}, opts ...Option[Predicate]) (*SearchConfig, error) {
	reg, err := Normalize[Predicate](additional)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(r, &reg); err != nil {
			return nil, err
		}
	}

	return &SearchConfig{
		resource: r,
		allowed:  AllowedFields(r, CapSearch).With(reg.Names()...),
		registry: reg,
	}, nil
}

func (sc *SearchConfig) Key() Capability { return CapSearch }

func (sc *SearchConfig) Allowed() FieldSet { return sc.allowed }

func (sc *SearchConfig) Registry() Registry[Predicate] { return sc.registry }

func ParseSearch(raw interface{}, allowed FieldSet) (Parsed, error) {
	return parseParams(CapSearch, raw, allowed)
}

// ApplySearch: un valor es un "contiene" sin mayúsculas; varios valores son
// el OR de un "contiene" por valor.
func ApplySearch(c Collection, p Parsed, reg Registry[Predicate]) (Collection, error) {
	if absent(c) {
		return c, nil
	}
	for _, fv := range p {
		if entry, ok := reg.Lookup(fv.Field); ok {
			if err := checkAllowed(CapSearch, fv.Field, fv.Values, entry.AllowedValues); err != nil {
				return nil, err
			}
			next, err := entry.Predicate(c, fv.Values)
			if err != nil {
				return nil, err
			}
			c = next
			continue
		}

		switch len(fv.Values) {
		case 0:
			continue
		case 1:
			c = c.Where(sharedDomain.Contains(fv.Field, fv.Values[0]))
		default:
			terms := make([]sharedDomain.Criteria, len(fv.Values))
			for i, v := range fv.Values {
				terms[i] = sharedDomain.Contains(fv.Field, v)
			}
			c = c.Where(sharedDomain.Or(terms...))
		}
	}
	return c, nil
}

func (sc *SearchConfig) Parse(raw interface{}) (Step, error) {
	p, err := ParseSearch(raw, sc.allowed)
	if err != nil {
		return nil, err
	}
	return func(c Collection) (Collection, error) {
		return ApplySearch(c, p, sc.registry)
	}, nil
}

func (sc *SearchConfig) Describe() Description {
	return Description{
		Capability: CapSearch,
		Resource:   resourceName(sc.resource),
		Fields:     sc.allowed.Names(),
		Predicates: describeRegistry(sc.registry),
	}
}
