package query

import (
	"errors"
	"fmt"
	"strings"
)

// ---------- Errores de configuración ----------
// Se producen al registrar un recurso y deben abortar el arranque.
var (
	ErrDuplicatePredicate = errors.New("custom predicate already registered")
	ErrCannotNormalize    = errors.New("cannot normalize additional parameter")
	ErrInvalidDefaultSort = errors.New("invalid default sort")
	ErrDuplicateHook      = errors.New("query hook already registered")
)

// ---------- Errores de petición ----------

// ErrInvalidParam lo envuelven todos los errores de validación de query params,
// de modo que errors.Is(err, ErrInvalidParam) permite traducirlos a un 400.
var ErrInvalidParam = errors.New("invalid query parameter")

// UnknownFieldError: uno o varios campos no están en el FieldSet.
type UnknownFieldError struct {
	Capability Capability
	Fields     []string
	Allowed    []string
}

func (e *UnknownFieldError) Error() string {
	verb := "doesn't exist or isn't"
	if len(e.Fields) > 1 {
		verb = "don't exist or aren't"
	}
	return fmt.Sprintf("attributes %s %s %s. Available %s fields are: %s",
		toSentence(e.Fields), verb, capabilityAdjective(e.Capability), e.Capability, toSentence(e.Allowed))
}

func (e *UnknownFieldError) Unwrap() error { return ErrInvalidParam }

// UnknownSortFieldError: el parser de sort falla en el primer campo inválido.
type UnknownSortFieldError struct {
	Field string
}

func (e *UnknownSortFieldError) Error() string {
	return fmt.Sprintf("the %q field is not sortable", e.Field)
}

func (e *UnknownSortFieldError) Unwrap() error { return ErrInvalidParam }

// MalformedParamError: el valor crudo no tiene la forma esperada.
type MalformedParamError struct {
	Capability Capability
	Raw        interface{}
}

func (e *MalformedParamError) Error() string {
	return fmt.Sprintf("invalid %s format for %v", e.Capability, e.Raw)
}

func (e *MalformedParamError) Unwrap() error { return ErrInvalidParam }

// InvalidRangeArityError: un campo de range no trae exactamente dos valores.
type InvalidRangeArityError struct {
	Field  string
	Values []string
}

// TooMany distingue "sobran valores" de "faltan valores".
func (e *InvalidRangeArityError) TooMany() bool { return len(e.Values) > 2 }

func (e *InvalidRangeArityError) Error() string {
	if e.TooMany() {
		return fmt.Sprintf("invalid range format for %s: too many arguments (%s)", e.Field, strings.Join(e.Values, ", "))
	}
	return fmt.Sprintf("invalid range format for %s: begin and end must be separated by a comma (,)", e.Field)
}

func (e *InvalidRangeArityError) Unwrap() error { return ErrInvalidParam }

// InvalidCustomValueError: valor fuera del conjunto permitido de un predicado custom.
type InvalidCustomValueError struct {
	Capability Capability
	Field      string
	Rejected   []string
	Allowed    []string
}

func (e *InvalidCustomValueError) Error() string {
	return fmt.Sprintf("value %s is not allowed for %s %s, can be %s",
		toSentence(e.Rejected), e.Capability, e.Field, toSentence(e.Allowed))
}

func (e *InvalidCustomValueError) Unwrap() error { return ErrInvalidParam }

// InvalidFilterValueError: el valor de un filtro built-in no encaja con el tipo de su columna.
type InvalidFilterValueError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("invalid value '%s' for filter %s: %v", e.Value, e.Field, e.Err)
}

func (e *InvalidFilterValueError) Is(target error) bool { return target == ErrInvalidParam }

func (e *InvalidFilterValueError) Unwrap() error { return e.Err }

// InvalidRangeValueError: no se pudo construir el intervalo con los límites dados.
type InvalidRangeValueError struct {
	Field string
	From  string
	To    string
	Err   error
}

func (e *InvalidRangeValueError) Error() string {
	msg := fmt.Sprintf("unable to create a range between values '%s' and '%s' for %s", e.From, e.To, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is permite reconocerlo como ErrInvalidParam sin perder la causa en Unwrap.
func (e *InvalidRangeValueError) Is(target error) bool { return target == ErrInvalidParam }

func (e *InvalidRangeValueError) Unwrap() error { return e.Err }

// ---------------- Helpers ----------------

func capabilityAdjective(c Capability) string {
	switch c {
	case CapFilter:
		return "filterable"
	case CapSearch:
		return "searchable"
	case CapRange:
		return "rangeable"
	case CapSort:
		return "sortable"
	default:
		return string(c) + " fields"
	}
}

// toSentence une una lista como "a", "a and b" o "a, b and c".
func toSentence(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
