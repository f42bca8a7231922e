package query

import (
	"sort"
	"strings"
)

// ---------------- Parámetros crudos ----------------

// Pair es una entrada clave/valor tal cual llega en la URL.
type Pair struct {
	Key   string
	Value string
}

// Pairs conserva el orden de aparición. La capa HTTP la produce para
// filter[...]/search[...]/range[...] de modo que los predicados se apliquen
// en el mismo orden en que el cliente los escribió.
type Pairs []Pair

// RawParams agrupa los valores crudos por clave de query (sort, filter...).
type RawParams map[string]interface{}

// ---------------- Parámetros parseados ----------------

// FieldValues es la lista de valores de un campo ya validado.
type FieldValues struct {
	Field  string
	Values []string
}

// Parsed es el ParsedParam de filter/search/range: campos validados en orden.
type Parsed []FieldValues

// Get devuelve los valores de un campo.
func (p Parsed) Get(field string) ([]string, bool) {
	for _, fv := range p {
		if fv.Field == field {
			return fv.Values, true
		}
	}
	return nil, false
}

// Fields devuelve los campos en orden de aparición.
func (p Parsed) Fields() []string {
	out := make([]string, len(p))
	for i, fv := range p {
		out[i] = fv.Field
	}
	return out
}

// ---------------- Parsing común ----------------

// splitValues parte en ',' sin recortar espacios. Los trozos vacíos del final
// se descartan, así "a," da ["a"] y "" da una lista vacía.
func splitValues(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}

// entries normaliza las formas aceptadas de un parámetro mapa
// (map[string]string, map[string]interface{} de strings o Pairs) a pares
// ordenados. nil y "" equivalen a un parámetro ausente.
func entries(c Capability, raw interface{}) ([]Pair, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
	case Pairs:
		return dedupe(v), nil
	case []Pair:
		return dedupe(v), nil
	case map[string]string:
		keys := sortedKeys(v)
		out := make([]Pair, 0, len(keys))
		for _, k := range keys {
			out = append(out, Pair{Key: k, Value: v[k]})
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Pair, 0, len(keys))
		for _, k := range keys {
			switch val := v[k].(type) {
			case string:
				out = append(out, Pair{Key: k, Value: val})
			case nil:
				out = append(out, Pair{Key: k})
			default:
				return nil, &MalformedParamError{Capability: c, Raw: raw}
			}
		}
		return out, nil
	}
	return nil, &MalformedParamError{Capability: c, Raw: raw}
}

// dedupe: una clave repetida conserva su primera posición y el último valor.
func dedupe(pairs []Pair) []Pair {
	pos := make(map[string]int, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if i, seen := pos[p.Key]; seen {
			out[i].Value = p.Value
			continue
		}
		pos[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseParams es el parser compartido por filter y search: parte valores y
// valida todos los campos contra allowed, informando de todos los inválidos.
func parseParams(c Capability, raw interface{}, allowed FieldSet) (Parsed, error) {
	pairs, err := entries(c, raw)
	if err != nil {
		return nil, err
	}

	parsed := make(Parsed, 0, len(pairs))
	var unknown []string
	for _, p := range pairs {
		if !allowed.Has(p.Key) {
			unknown = append(unknown, p.Key)
			continue
		}
		parsed = append(parsed, FieldValues{Field: p.Key, Values: splitValues(p.Value)})
	}

	if len(unknown) > 0 {
		return nil, &UnknownFieldError{Capability: c, Fields: unknown, Allowed: allowed.Names()}
	}
	return parsed, nil
}
