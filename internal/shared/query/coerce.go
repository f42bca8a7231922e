package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var errUncoercible = errors.New("value does not match the column type")

// Coerce convierte un valor string de query param al tipo de la columna.
// Lo usan los traductores a SQL / BSON y el matcher en memoria. Si la
// conversión no es posible devuelve el valor sin cambios; filter lo rechaza
// antes con CheckValue.
func Coerce(t ColumnType, v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch t {
	case TypeInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case TypeBoolean:
		switch strings.ToLower(s) {
		case "true", "t", "1":
			return true
		case "false", "f", "0":
			return false
		}
	case TypeTime:
		if ts, err := ParseTime(s); err == nil {
			return ts
		}
	}
	return v
}

// CoerceAll aplica Coerce a cada elemento.
func CoerceAll(t ColumnType, values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = Coerce(t, v)
	}
	return out
}

// CheckValue comprueba que s se puede convertir al tipo de columna t.
// Los tipos sin conversión aceptan cualquier valor.
func CheckValue(t ColumnType, s string) error {
	switch t {
	case TypeInteger, TypeFloat, TypeBoolean, TypeTime:
		if _, still := Coerce(t, s).(string); still {
			return fmt.Errorf("%w: %q is not a valid %s", errUncoercible, s, t)
		}
	case TypeUUID:
		if _, err := uuid.Parse(s); err != nil {
			return fmt.Errorf("%w: %q is not a valid %s", errUncoercible, s, t)
		}
	}
	return nil
}
