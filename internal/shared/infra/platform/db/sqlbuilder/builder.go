package sqlbuilder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	sharedUtils "github.com/davicafu/hexaquery/internal/shared/infra/utils"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

// ---------------- Dialectos ----------------

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
	ClickHouse
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case ClickHouse:
		return "clickhouse"
	default:
		return "sqlite"
	}
}

// ParseDialect acepta los nombres usados en DB_DRIVER.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "clickhouse":
		return ClickHouse, nil
	}
	return SQLite, fmt.Errorf("unknown sql dialect %q", name)
}

// Placeholder devuelve el marcador del argumento n (1-based).
func (d Dialect) Placeholder(n int) string {
	return sharedUtils.Ternary(d == Postgres, fmt.Sprintf("$%d", n), "?")
}

// SQLite no tiene ILIKE; su LIKE ya ignora mayúsculas en ASCII.
func (d Dialect) operator(op sharedDomain.Operator) sharedDomain.Operator {
	if d == SQLite && op == sharedDomain.OpILike {
		return sharedDomain.OpLike
	}
	return op
}

// ---------------- Errores ----------------

var (
	ErrInvalidIdentifier   = errors.New("invalid sql identifier")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ---------------- Builder ----------------

// Builder traduce un query.Scope a SQL parametrizado.
// Types convierte los valores string al tipo de cada columna y Columns
// permite renombrar campos (campo -> columna); ambos son opcionales.
type Builder struct {
	Dialect Dialect
	Types   map[string]query.ColumnType
	Columns map[string]string
}

// New crea un Builder con los tipos de columna del recurso.
func New(d Dialect, r query.Resource) Builder {
	return Builder{Dialect: d, Types: query.ColumnTypes(r)}
}

// Statement es el resultado de traducir un Scope.
type Statement struct {
	Where   string // sin "WHERE", vacío si no hay condiciones
	OrderBy string // sin "ORDER BY"
	Args    []interface{}
}

type state struct {
	b    Builder
	args []interface{}
}

func (s *state) bind(v interface{}) string {
	s.args = append(s.args, v)
	return s.b.Dialect.Placeholder(len(s.args))
}

// Build traduce condiciones y ordenación. El scope vacío produce "1 = 0".
func (b Builder) Build(scope query.Scope) (Statement, error) {
	if scope.Empty() {
		return Statement{Where: "1 = 0"}, nil
	}

	st := &state{b: b}
	where, err := st.criteria(scope.Criteria(), false)
	if err != nil {
		return Statement{}, err
	}

	orderBy, err := b.orderBy(scope.Order())
	if err != nil {
		return Statement{}, err
	}

	return Statement{Where: where, OrderBy: orderBy, Args: st.args}, nil
}

// Select compone la consulta completa: base + WHERE + ORDER BY + LIMIT/OFFSET.
func (b Builder) Select(base string, scope query.Scope, page query.Page) (string, []interface{}, error) {
	stmt, err := b.Build(scope)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(base)
	if stmt.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(stmt.Where)
	}
	if stmt.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(stmt.OrderBy)
	}

	page = page.Normalize()
	args := append(stmt.Args, page.Limit, page.Offset)
	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", b.Dialect.Placeholder(len(args)-1), b.Dialect.Placeholder(len(args)))

	return sb.String(), args, nil
}

func (b Builder) column(field string) (string, error) {
	name := field
	if mapped, ok := b.Columns[field]; ok {
		name = mapped
	}
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, field)
	}
	return name, nil
}

func (b Builder) coerce(field string, v interface{}) interface{} {
	t, ok := b.Types[field]
	if !ok {
		return v
	}
	return query.Coerce(t, v)
}

func (b Builder) orderBy(o query.Ordering) (string, error) {
	parts := make([]string, 0, len(o))
	for _, s := range o {
		col, err := b.column(s.Field)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s %s", col, sharedUtils.Ternary(s.Direction == query.Desc, "DESC", "ASC")))
	}
	return strings.Join(parts, ", "), nil
}

// ---------------- Criterios ----------------

func (s *state) criteria(c sharedDomain.Criteria, nested bool) (string, error) {
	if c == nil {
		return "", nil
	}
	comp, ok := c.(sharedDomain.CompositeCriteria)
	if !ok {
		conds := c.ToConditions()
		parts := make([]string, 0, len(conds))
		for _, cond := range conds {
			sql, err := s.criterion(cond)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		return join(parts, " AND ", nested), nil
	}

	parts := make([]string, 0, len(comp.Criterias))
	for _, child := range comp.Criterias {
		sql, err := s.criteria(child, true)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}

	switch comp.Operator {
	case sharedDomain.OpNot:
		return "NOT (" + strings.Join(parts, " AND ") + ")", nil
	case sharedDomain.OpOr:
		return join(parts, " OR ", nested), nil
	default:
		return join(parts, " AND ", nested), nil
	}
}

func join(parts []string, sep string, nested bool) string {
	out := strings.Join(parts, sep)
	if nested && len(parts) > 1 {
		return "(" + out + ")"
	}
	return out
}

func (s *state) criterion(c sharedDomain.Criterion) (string, error) {
	col, err := s.b.column(c.Field)
	if err != nil {
		return "", err
	}

	switch c.Op {
	case sharedDomain.OpEq, sharedDomain.OpNe, sharedDomain.OpGt, sharedDomain.OpGte,
		sharedDomain.OpLt, sharedDomain.OpLte:
		return fmt.Sprintf("%s %s %s", col, c.Op, s.bind(s.b.coerce(c.Field, c.Value))), nil

	case sharedDomain.OpLike, sharedDomain.OpILike:
		return fmt.Sprintf("%s %s %s", col, s.b.Dialect.operator(c.Op), s.bind(c.Value)), nil

	case sharedDomain.OpIn:
		values, _ := c.Value.([]interface{})
		if len(values) == 0 {
			return "1 = 0", nil
		}
		holders := make([]string, len(values))
		for i, v := range values {
			holders[i] = s.bind(s.b.coerce(c.Field, v))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(holders, ", ")), nil

	case sharedDomain.OpBetween:
		bounds, ok := c.Value.(sharedDomain.Bounds)
		if !ok {
			return "", fmt.Errorf("%w: BETWEEN without bounds on %s", ErrUnsupportedOperator, c.Field)
		}
		from := s.bind(s.b.coerce(c.Field, bounds.From))
		to := s.bind(s.b.coerce(c.Field, bounds.To))
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, from, to), nil

	case sharedDomain.OpIsNull, sharedDomain.OpNotNull:
		return fmt.Sprintf("%s %s", col, c.Op), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Op)
}
