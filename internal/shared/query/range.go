package query

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Range ----------------

var (
	errEmptyBound     = errors.New("empty bound")
	errNotRangeable   = errors.New("boolean columns cannot be ranged")
	errBadTimeLiteral = errors.New("unrecognized time format")
)

// Formatos de fecha aceptados en los límites de un intervalo.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type RangeConfig struct {
	resource Resource
	allowed  FieldSet
	types    map[string]ColumnType
	registry Registry[RangePredicate]
}

// RegisterRange compila la configuración de range. Sin declaración propia los
// campos son los filtrables.
func RegisterRange(r Resource, additional map[string]interface{}, opts ...Option[RangePredicate]) (*RangeConfig, error) {
	reg, err := Normalize[RangePredicate](additional)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(r, &reg); err != nil {
			return nil, err
		}
	}

	return &RangeConfig{
		resource: r,
		allowed:  AllowedFields(r, CapRange).With(reg.Names()...),
		types:    ColumnTypes(r),
		registry: reg,
	}, nil
}

func (rc *RangeConfig) Key() Capability { return CapRange }

func (rc *RangeConfig) Allowed() FieldSet { return rc.allowed }

func (rc *RangeConfig) Registry() Registry[RangePredicate] { return rc.registry }

// ParseRange valida {campo: "desde,hasta"}. Los campos desconocidos se
// informan antes que los errores de aridad.
func ParseRange(raw interface{}, allowed FieldSet) (Parsed, error) {
	pairs, err := entries(CapRange, raw)
	if err != nil {
		return nil, err
	}

	parsed := make(Parsed, 0, len(pairs))
	var unknown []string
	var arityErr error
	for _, p := range pairs {
		if !allowed.Has(p.Key) {
			unknown = append(unknown, p.Key)
			continue
		}
		values := splitValues(p.Value)
		if len(values) != 2 && arityErr == nil {
			arityErr = &InvalidRangeArityError{Field: p.Key, Values: values}
		}
		parsed = append(parsed, FieldValues{Field: p.Key, Values: values})
	}

	if len(unknown) > 0 {
		return nil, &UnknownFieldError{Capability: CapRange, Fields: unknown, Allowed: allowed.Names()}
	}
	if arityErr != nil {
		return nil, arityErr
	}
	return parsed, nil
}

// ApplyRange añade un BETWEEN inclusivo por campo. Los límites se convierten
// según el tipo de columna; types nil los deja como strings.
func ApplyRange(c Collection, p Parsed, reg Registry[RangePredicate], types map[string]ColumnType) (Collection, error) {
	if absent(c) {
		return c, nil
	}
	for _, fv := range p {
		if len(fv.Values) != 2 {
			return nil, &InvalidRangeArityError{Field: fv.Field, Values: fv.Values}
		}
		from, to := fv.Values[0], fv.Values[1]

		if entry, ok := reg.Lookup(fv.Field); ok {
			if err := checkAllowed(CapRange, fv.Field, fv.Values, entry.AllowedValues); err != nil {
				return nil, err
			}
			next, err := entry.Predicate(c, from, to)
			if err != nil {
				return nil, err
			}
			c = next
			continue
		}

		t, known := types[fv.Field]
		if !known {
			t = TypeString
		}
		low, err := rangeBound(t, from)
		if err != nil {
			return nil, &InvalidRangeValueError{Field: fv.Field, From: from, To: to, Err: err}
		}
		high, err := rangeBound(t, to)
		if err != nil {
			return nil, &InvalidRangeValueError{Field: fv.Field, From: from, To: to, Err: err}
		}
		c = c.Where(sharedDomain.Between(fv.Field, low, high))
	}
	return c, nil
}

func rangeBound(t ColumnType, s string) (interface{}, error) {
	if s == "" {
		return nil, errEmptyBound
	}
	switch t {
	case TypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case TypeFloat:
		return strconv.ParseFloat(s, 64)
	case TypeTime:
		return ParseTime(s)
	case TypeBoolean:
		return nil, errNotRangeable
	default:
		return s, nil
	}
}

// ParseTime acepta RFC3339 y fechas sin zona (interpretadas en UTC).
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadTimeLiteral, s)
}

func (rc *RangeConfig) Parse(raw interface{}) (Step, error) {
	p, err := ParseRange(raw, rc.allowed)
	if err != nil {
		return nil, err
	}
	return func(c Collection) (Collection, error) {
		return ApplyRange(c, p, rc.registry, rc.types)
	}, nil
}

func (rc *RangeConfig) Describe() Description {
	return Description{
		Capability: CapRange,
		Resource:   resourceName(rc.resource),
		Fields:     rc.allowed.Names(),
		Predicates: describeRegistry(rc.registry),
	}
}
