package query

import (
	"strconv"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Fuzzy ----------------

// FuzzyConfig busca un único término en todos los campos buscables a la vez.
type FuzzyConfig struct {
	resource Resource
	allowed  FieldSet
	types    map[string]ColumnType
}

// RegisterFuzzy usa los campos fuzzy declarados o, en su defecto, los de search.
func RegisterFuzzy(r Resource) *FuzzyConfig {
	return &FuzzyConfig{
		resource: r,
		allowed:  AllowedFields(r, CapFuzzy),
		types:    ColumnTypes(r),
	}
}

func (fc *FuzzyConfig) Key() Capability { return CapFuzzy }

func (fc *FuzzyConfig) Allowed() FieldSet { return fc.allowed }

// ParseFuzzy devuelve el término; "" significa que no hay búsqueda.
func ParseFuzzy(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	return "", &MalformedParamError{Capability: CapFuzzy, Raw: raw}
}

// ApplyFuzzy combina con OR una comparación por campo según su tipo:
// texto contiene el término, enteros y decimales exigen igualdad numérica,
// fechas y uuids igualdad si el término es válido, booleanos nunca participan.
// Si ningún campo admite el término el resultado es la colección vacía.
func ApplyFuzzy(c Collection, term string, fields FieldSet, types map[string]ColumnType) Collection {
	if absent(c) || term == "" {
		return c
	}

	var terms []sharedDomain.Criteria
	for _, field := range fields.Names() {
		if crit, ok := fuzzyCriterion(field, types[field], term); ok {
			terms = append(terms, crit)
		}
	}
	if len(terms) == 0 {
		return c.None()
	}
	return c.Where(sharedDomain.Or(terms...))
}

func fuzzyCriterion(field string, t ColumnType, term string) (sharedDomain.Criterion, bool) {
	switch t {
	case TypeString:
		return sharedDomain.Contains(field, term), true
	case TypeInteger:
		n, err := strconv.ParseInt(term, 10, 64)
		if err != nil {
			return sharedDomain.Criterion{}, false
		}
		return sharedDomain.Eq(field, n), true
	case TypeFloat:
		f, err := strconv.ParseFloat(term, 64)
		if err != nil {
			return sharedDomain.Criterion{}, false
		}
		return sharedDomain.Eq(field, f), true
	case TypeBoolean:
		return sharedDomain.Criterion{}, false
	case TypeTime:
		ts, err := ParseTime(term)
		if err != nil {
			return sharedDomain.Criterion{}, false
		}
		return sharedDomain.Eq(field, ts), true
	case TypeUUID:
		if _, err := uuid.Parse(term); err != nil {
			return sharedDomain.Criterion{}, false
		}
		return sharedDomain.Eq(field, term), true
	default:
		return sharedDomain.Eq(field, term), true
	}
}

func (fc *FuzzyConfig) Parse(raw interface{}) (Step, error) {
	term, err := ParseFuzzy(raw)
	if err != nil {
		return nil, err
	}
	return func(c Collection) (Collection, error) {
		return ApplyFuzzy(c, term, fc.allowed, fc.types), nil
	}, nil
}

func (fc *FuzzyConfig) Describe() Description {
	return Description{
		Capability: CapFuzzy,
		Resource:   resourceName(fc.resource),
		Fields:     fc.allowed.Names(),
	}
}
