package httpquery

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexaquery/internal/shared/query"
)

// ErrInvalidPage: limit u offset no son enteros no negativos.
var ErrInvalidPage = fmt.Errorf("%w: limit and offset must be non-negative integers", query.ErrInvalidParam)

// mapCapabilities son las claves que llegan como filter[campo]=valor.
var mapCapabilities = map[query.Capability]struct{}{
	query.CapFilter: {},
	query.CapSearch: {},
	query.CapRange:  {},
}

// ---------------- Extracción ----------------

// Extract lee los query params de la petición y los agrupa por capacidad.
func Extract(c *gin.Context) (query.RawParams, error) {
	return FromRawQuery(c.Request.URL.RawQuery)
}

// FromRawQuery recorre la query string en orden. filter[x], search[x] y
// range[x] se acumulan como query.Pairs conservando el orden de la URL; sort y
// fuzzy se guardan como string (gana el último). El resto de claves se ignora.
// Una capacidad que llega a la vez con y sin corchetes es un error.
func FromRawQuery(raw string) (query.RawParams, error) {
	params := query.RawParams{}
	bare := map[string]string{}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &query.MalformedParamError{Capability: query.Capability(rawKey), Raw: part}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &query.MalformedParamError{Capability: capabilityOf(key), Raw: part}
		}

		name, field, bracketed := splitKey(key)
		capability := query.Capability(name)

		switch {
		case bracketed:
			if _, ok := mapCapabilities[capability]; !ok {
				continue
			}
			if first, mixed := bare[name]; mixed {
				return nil, &query.MalformedParamError{Capability: capability, Raw: first}
			}
			pairs, _ := params[name].(query.Pairs)
			params[name] = append(pairs, query.Pair{Key: field, Value: value})
		case capability == query.CapSort || capability == query.CapFuzzy:
			params[name] = value
		case isMapCapability(capability):
			// filter=algo sin corchetes: se deja pasar para que el parser lo rechace
			if value == "" {
				continue
			}
			if _, mixed := params[name].(query.Pairs); mixed {
				return nil, &query.MalformedParamError{Capability: capability, Raw: part}
			}
			bare[name] = part
			params[name] = value
		}
	}
	return params, nil
}

// splitKey separa "filter[login]" en ("filter", "login", true).
func splitKey(key string) (string, string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

func capabilityOf(key string) query.Capability {
	name, _, _ := splitKey(key)
	return query.Capability(name)
}

func isMapCapability(c query.Capability) bool {
	_, ok := mapCapabilities[c]
	return ok
}

// ---------------- Paginación ----------------

// PageFrom lee limit y offset. Los valores ausentes quedan a cero y
// query.Page.Normalize aplica los límites por defecto.
func PageFrom(c *gin.Context) (query.Page, error) {
	var page query.Page
	var err error
	if page.Limit, err = nonNegative(c.Query("limit")); err != nil {
		return query.Page{}, err
	}
	if page.Offset, err = nonNegative(c.Query("offset")); err != nil {
		return query.Page{}, err
	}
	return page, nil
}

func nonNegative(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidPage
	}
	return n, nil
}

// ---------------- Errores ----------------

// StatusFor traduce los errores del motor a códigos HTTP.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, query.ErrInvalidParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
