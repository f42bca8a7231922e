package memory

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

var ErrUnsupportedOperator = errors.New("unsupported operator for in-memory matcher")

// Record es la vista plana de una entidad: campo -> valor.
type Record map[string]interface{}

// Matcher evalúa un query.Scope sobre registros en memoria con la misma
// semántica que los traductores SQL: NULL nunca es igual a nada y LIKE / ILIKE
// siguen los comodines '%' y '_'.
type Matcher struct {
	types map[string]query.ColumnType
}

func NewMatcher(r query.Resource) Matcher {
	return Matcher{types: query.ColumnTypes(r)}
}

// Select filtra, ordena y pagina. toRecord proyecta cada entidad.
func Select[T any](m Matcher, items []T, scope query.Scope, page query.Page, toRecord func(T) Record) ([]T, error) {
	if scope.Empty() {
		return []T{}, nil
	}

	type row struct {
		item T
		rec  Record
	}
	rows := make([]row, 0, len(items))
	for _, it := range items {
		rec := toRecord(it)
		ok, err := m.Match(scope.Criteria(), rec)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row{item: it, rec: rec})
		}
	}

	order := scope.Order()
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range order {
			c := compareForSort(rows[i].rec[s.Field], rows[j].rec[s.Field])
			if c == 0 {
				continue
			}
			if s.Direction == query.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	page = page.Normalize()
	out := make([]T, 0, page.Limit)
	for i := page.Offset; i < len(rows) && len(out) < page.Limit; i++ {
		out = append(out, rows[i].item)
	}
	return out, nil
}

// Match evalúa un árbol de criterios contra un registro.
func (m Matcher) Match(c sharedDomain.Criteria, rec Record) (bool, error) {
	if c == nil {
		return true, nil
	}
	comp, ok := c.(sharedDomain.CompositeCriteria)
	if !ok {
		for _, cond := range c.ToConditions() {
			matched, err := m.criterion(cond, rec)
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil
	}

	switch comp.Operator {
	case sharedDomain.OpOr:
		if comp.IsEmpty() {
			return true, nil
		}
		for _, child := range comp.Criterias {
			if child == nil {
				continue
			}
			if inner, isComp := child.(sharedDomain.CompositeCriteria); isComp && inner.IsEmpty() {
				continue
			}
			matched, err := m.Match(child, rec)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	case sharedDomain.OpNot:
		if comp.IsEmpty() {
			return true, nil
		}
		matched, err := m.Match(sharedDomain.And(comp.Criterias...), rec)
		return !matched, err
	default:
		for _, child := range comp.Criterias {
			matched, err := m.Match(child, rec)
			if err != nil || !matched {
				return false, err
			}
		}
		return true, nil
	}
}

func (m Matcher) coerce(field string, v interface{}) interface{} {
	if t, ok := m.types[field]; ok {
		return query.Coerce(t, v)
	}
	return v
}

func (m Matcher) criterion(c sharedDomain.Criterion, rec Record) (bool, error) {
	actual := normalize(rec[c.Field])

	switch c.Op {
	case sharedDomain.OpIsNull:
		return actual == nil, nil
	case sharedDomain.OpNotNull:
		return actual != nil, nil
	}
	if actual == nil {
		return false, nil
	}

	switch c.Op {
	case sharedDomain.OpEq, sharedDomain.OpNe, sharedDomain.OpGt, sharedDomain.OpGte,
		sharedDomain.OpLt, sharedDomain.OpLte:
		cmp, ok := compare(actual, normalize(m.coerce(c.Field, c.Value)))
		if !ok {
			return c.Op == sharedDomain.OpNe, nil
		}
		switch c.Op {
		case sharedDomain.OpEq:
			return cmp == 0, nil
		case sharedDomain.OpNe:
			return cmp != 0, nil
		case sharedDomain.OpGt:
			return cmp > 0, nil
		case sharedDomain.OpGte:
			return cmp >= 0, nil
		case sharedDomain.OpLt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}

	case sharedDomain.OpIn:
		values, _ := c.Value.([]interface{})
		for _, v := range values {
			if cmp, ok := compare(actual, normalize(m.coerce(c.Field, v))); ok && cmp == 0 {
				return true, nil
			}
		}
		return false, nil

	case sharedDomain.OpBetween:
		b, ok := c.Value.(sharedDomain.Bounds)
		if !ok {
			return false, fmt.Errorf("%w: BETWEEN without bounds on %s", ErrUnsupportedOperator, c.Field)
		}
		low, okLow := compare(actual, normalize(m.coerce(c.Field, b.From)))
		high, okHigh := compare(actual, normalize(m.coerce(c.Field, b.To)))
		return okLow && okHigh && low >= 0 && high <= 0, nil

	case sharedDomain.OpLike, sharedDomain.OpILike:
		pattern, ok := c.Value.(string)
		if !ok {
			return false, fmt.Errorf("%w: %s needs a string pattern", ErrUnsupportedOperator, c.Op)
		}
		expr := sharedDomain.LikeToRegex(pattern)
		if c.Op == sharedDomain.OpILike {
			expr = "(?is)" + expr
		} else {
			expr = "(?s)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return false, err
		}
		return re.MatchString(fmt.Sprint(actual)), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Op)
}

// normalize reduce los valores a string, float64, bool, time.Time o nil.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case time.Time:
		return t.UTC()
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		if t == nil {
			return nil
		}
		return t.String()
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case fmt.Stringer:
		return t.String()
	}

	// tipos con nombre (type Status string...)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	return v
}

// compare devuelve false si los tipos no son comparables.
func compare(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	case string:
		y, ok := b.(string)
		if !ok {
			y = fmt.Sprint(b)
		}
		return strings.Compare(x, y), true
	}
	return 0, false
}

// compareForSort ordena los NULL al final en ascendente, como PostgreSQL.
func compareForSort(a, b interface{}) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c, _ := compare(a, b)
	return c
}
