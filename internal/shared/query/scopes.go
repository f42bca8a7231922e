package query

import "fmt"

// ---------------- Hooks ----------------

// Step es la transformación ya validada que produce un hook para una petición.
type Step func(c Collection) (Collection, error)

// Hook es una capacidad compilada: lee su clave de query, valida el valor
// crudo y devuelve el paso a aplicar. Los *Config de este paquete lo implementan.
type Hook interface {
	Key() Capability
	Parse(raw interface{}) (Step, error)
	Describe() Description
}

var (
	_ Hook = (*SortConfig)(nil)
	_ Hook = (*FilterConfig)(nil)
	_ Hook = (*SearchConfig)(nil)
	_ Hook = (*RangeConfig)(nil)
	_ Hook = (*FuzzyConfig)(nil)
)

// ---------------- Descripción ----------------

// Description documenta una capacidad (campos y predicados custom).
type Description struct {
	Capability Capability      `json:"capability"`
	Resource   string          `json:"resource,omitempty"`
	Fields     []string        `json:"fields"`
	Predicates []PredicateInfo `json:"predicates,omitempty"`
	Default    string          `json:"default,omitempty"`
}

type PredicateInfo struct {
	Name          string   `json:"name"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	Description   string   `json:"description,omitempty"`
}

func describeRegistry[P any](reg Registry[P]) []PredicateInfo {
	names := reg.Names()
	if len(names) == 0 {
		return nil
	}
	out := make([]PredicateInfo, 0, len(names))
	for _, name := range names {
		e, _ := reg.Lookup(name)
		out = append(out, PredicateInfo{Name: name, AllowedValues: e.AllowedValues, Description: e.Description})
	}
	return out
}

func resourceName(r Resource) string {
	if r == nil {
		return ""
	}
	return r.Name()
}

// ---------------- Scopes ----------------

// Scopes agrupa los hooks de un recurso y ejecuta el pipeline de una petición:
// primero se parsean todas las capacidades y solo si todas son válidas se
// aplican, en el orden en que se registraron.
type Scopes struct {
	hooks []Hook
}

// NewScopes falla si dos hooks comparten clave de query.
func NewScopes(hooks ...Hook) (*Scopes, error) {
	seen := make(map[Capability]struct{}, len(hooks))
	kept := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if _, dup := seen[h.Key()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHook, h.Key())
		}
		seen[h.Key()] = struct{}{}
		kept = append(kept, h)
	}
	return &Scopes{hooks: kept}, nil
}

// Apply parsea cada capacidad con su clave de params y después aplica los pasos.
// Las claves que no pertenecen a ningún hook (page, limit...) se ignoran.
func (s *Scopes) Apply(c Collection, params RawParams) (Collection, error) {
	steps := make([]Step, 0, len(s.hooks))
	for _, h := range s.hooks {
		step, err := h.Parse(params[string(h.Key())])
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	var err error
	for _, step := range steps {
		if c, err = step(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Keys devuelve las claves de query que entiende este recurso.
func (s *Scopes) Keys() []string {
	out := make([]string, len(s.hooks))
	for i, h := range s.hooks {
		out[i] = string(h.Key())
	}
	return out
}

func (s *Scopes) Describe() []Description {
	out := make([]Description, len(s.hooks))
	for i, h := range s.hooks {
		out[i] = h.Describe()
	}
	return out
}

// ---------------- Compilación ----------------

// Setup es la declaración completa de consultas de un recurso.
// Un mapa nil registra igualmente la capacidad, sin predicados adicionales.
type Setup struct {
	DefaultSort []Sort

	Filter        map[string]interface{}
	FilterOptions []Option[Predicate]

	Search        map[string]interface{}
	SearchOptions []Option[Predicate]

	Range        map[string]interface{}
	RangeOptions []Option[RangePredicate]

	Fuzzy bool
}

// Compile registra filter, search, range, fuzzy (si se pide) y sort, en ese
// orden. Cualquier error de configuración aborta.
func Compile(r Resource, s Setup) (*Scopes, error) {
	filter, err := RegisterFilter(r, s.Filter, s.FilterOptions...)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	search, err := RegisterSearch(r, s.Search, s.SearchOptions...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	rng, err := RegisterRange(r, s.Range, s.RangeOptions...)
	if err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}
	sorting, err := RegisterSort(r, s.DefaultSort...)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}

	hooks := []Hook{filter, search, rng}
	if s.Fuzzy {
		hooks = append(hooks, RegisterFuzzy(r))
	}
	hooks = append(hooks, sorting)
	return NewScopes(hooks...)
}
