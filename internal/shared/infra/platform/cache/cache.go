package cache

import (
	"context"
)

// Cache es el puerto de caché de los servicios. Los valores viajan como JSON.
//
// Espacios de claves:
//   - "<entidad>:id:<uuid>": entrada por id, escrita tras cada lectura o escritura
//     y borrada cuando la entidad desaparece o su escritura falla.
//   - "list:<recurso>:version": contador de versión de listados.
//   - "list:<recurso>:v<n>:<hash>": página de un listado; ver ListCache.
type Cache interface {
	// Get rellena dest (un puntero). Un miss es (false, nil).
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda val con un TTL en segundos; ttlSecs <= 0 usa el TTL por defecto.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	// Delete borra key; borrar una clave ausente no es un error.
	Delete(ctx context.Context, key string) error
}

// Counter lo implementan las cachés con incremento atómico. ListCache lo usa
// para versionar listados sin carreras entre procesos.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}
