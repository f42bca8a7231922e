package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq      Operator = "="
	OpNe      Operator = "<>"
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpLike    Operator = "LIKE"
	OpILike   Operator = "ILIKE"
	OpIn      Operator = "IN"
	OpBetween Operator = "BETWEEN"
	OpIsNull  Operator = "IS NULL"
	OpNotNull Operator = "IS NOT NULL"
)

type LogicalOperator string

const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
	OpNot LogicalOperator = "NOT"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado.
// Value depende del operador: un escalar, []interface{} para OpIn,
// Bounds para OpBetween y nil para OpIsNull / OpNotNull.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

// ToConditions permite usar un Criterion suelto allí donde se espera Criteria.
func (c Criterion) ToConditions() []Criterion {
	return []Criterion{c}
}

// Bounds es el intervalo cerrado [From, To] de un OpBetween.
type Bounds struct {
	From interface{}
	To   interface{}
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales.
// Las implementaciones hoja devuelven condiciones que se combinan con AND;
// para OR / NOT hay que usar CompositeCriteria.
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Operator  LogicalOperator
	Criterias []Criteria
}

// ToConditions aplana el árbol. Pierde la semántica OR / NOT, así que los
// traductores deben recorrer Criterias en lugar de usar este método.
func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// IsEmpty indica si el compuesto no aporta ninguna condición.
func (c CompositeCriteria) IsEmpty() bool {
	for _, crit := range c.Criterias {
		if comp, ok := crit.(CompositeCriteria); ok {
			if !comp.IsEmpty() {
				return false
			}
			continue
		}
		if crit != nil && len(crit.ToConditions()) > 0 {
			return false
		}
	}
	return true
}

// ---------------- Helpers ----------------

// And crea un CompositeCriteria con operador AND
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpAnd, Criterias: criterias}
}

// Or crea un CompositeCriteria con operador OR
func Or(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpOr, Criterias: criterias}
}

// Not niega el criterio recibido.
func Not(criteria Criteria) CompositeCriteria {
	return CompositeCriteria{Operator: OpNot, Criterias: []Criteria{criteria}}
}

func Eq(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpEq, Value: value}
}

func Ne(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpNe, Value: value}
}

func Gt(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpGt, Value: value}
}

func Gte(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpGte, Value: value}
}

func Lt(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpLt, Value: value}
}

func Lte(field string, value interface{}) Criterion {
	return Criterion{Field: field, Op: OpLte, Value: value}
}

// In filtra por pertenencia a una lista de valores.
func In(field string, values ...interface{}) Criterion {
	return Criterion{Field: field, Op: OpIn, Value: values}
}

// InStrings es un atajo de In para listas de strings (lo habitual en query params).
func InStrings(field string, values []string) Criterion {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In(field, vals...)
}

// Contains busca term como subcadena sin distinguir mayúsculas.
func Contains(field, term string) Criterion {
	return Criterion{Field: field, Op: OpILike, Value: "%" + term + "%"}
}

// Between filtra por el intervalo cerrado [from, to].
func Between(field string, from, to interface{}) Criterion {
	return Criterion{Field: field, Op: OpBetween, Value: Bounds{From: from, To: to}}
}

func IsNull(field string) Criterion {
	return Criterion{Field: field, Op: OpIsNull}
}

func NotNull(field string) Criterion {
	return Criterion{Field: field, Op: OpNotNull}
}

// ---------------- Representación textual ----------------

// Format devuelve una representación legible y estable del árbol de criterios,
// p.ej. "login IN (a, b) AND id = 5". Es ambigua con valores que contengan
// " AND " o ", ", así que sólo sirve para logs.
func Format(criteria Criteria) string {
	return formatCriteria(criteria, false, FormatValue)
}

// Encode es como Format pero cada valor lleva prefijo de tipo y va entre
// comillas, p.ej. `login IN (s:"a", s:"b") AND id = i:5`. Dos árboles distintos
// nunca producen el mismo texto, por eso se usa como clave de caché.
func Encode(criteria Criteria) string {
	return formatCriteria(criteria, false, EncodeValue)
}

func formatCriteria(criteria Criteria, nested bool, val func(interface{}) string) string {
	if criteria == nil {
		return ""
	}

	comp, ok := criteria.(CompositeCriteria)
	if !ok {
		var parts []string
		for _, c := range criteria.ToConditions() {
			parts = append(parts, formatCriterion(c, val))
		}
		out := strings.Join(parts, " AND ")
		if nested && len(parts) > 1 {
			return "(" + out + ")"
		}
		return out
	}

	var parts []string
	var kept []Criteria
	for _, child := range comp.Criterias {
		if s := formatCriteria(child, true, val); s != "" {
			parts = append(parts, s)
			kept = append(kept, child)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	// Un AND / OR con un único hijo es transparente.
	if len(kept) == 1 && comp.Operator != OpNot {
		return formatCriteria(kept[0], nested, val)
	}

	switch comp.Operator {
	case OpNot:
		return "NOT (" + strings.Join(parts, " AND ") + ")"
	case OpOr:
		out := strings.Join(parts, " OR ")
		if nested && len(parts) > 1 {
			return "(" + out + ")"
		}
		return out
	default:
		out := strings.Join(parts, " AND ")
		if nested && len(parts) > 1 {
			return "(" + out + ")"
		}
		return out
	}
}

func formatCriterion(c Criterion, val func(interface{}) string) string {
	switch c.Op {
	case OpIsNull, OpNotNull:
		return fmt.Sprintf("%s %s", c.Field, c.Op)
	case OpIn:
		vals, _ := c.Value.([]interface{})
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = val(v)
		}
		return fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(parts, ", "))
	case OpBetween:
		b, _ := c.Value.(Bounds)
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Field, val(b.From), val(b.To))
	default:
		return fmt.Sprintf("%s %s %s", c.Field, c.Op, val(c.Value))
	}
}

// FormatValue serializa un valor de condición de forma estable.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return "NULL"
		}
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// EncodeValue serializa un valor sin ambigüedad: prefijo de tipo más el
// literal entre comillas cuando puede contener separadores.
func EncodeValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "s:" + strconv.Quote(t)
	case bool:
		return "b:" + strconv.FormatBool(t)
	case int:
		return "i:" + strconv.Itoa(t)
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case float64:
		return "f:" + strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return "null"
		}
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%T:%s", v, strconv.Quote(fmt.Sprint(v)))
	}
}
