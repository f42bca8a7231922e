package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ListCache cachea resultados de listados indexados por la clave canónica del
// Scope. Cada recurso tiene una versión; una escritura la incrementa y deja
// huérfanas todas las entradas anteriores sin tener que enumerarlas.
type ListCache struct {
	cache   Cache
	ttlSecs int
	log     *zap.Logger
}

func NewListCache(c Cache, ttl time.Duration, log *zap.Logger) *ListCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListCache{cache: c, ttlSecs: int(ttl.Seconds()), log: log}
}

func versionKey(resource string) string {
	return "list:" + resource + ":version"
}

func (l *ListCache) version(ctx context.Context, resource string) int64 {
	var v int64
	if _, err := l.cache.Get(ctx, versionKey(resource), &v); err != nil {
		l.log.Warn("Cache version read failed", zap.String("resource", resource), zap.Error(err))
	}
	return v
}

// Key compone la clave de un listado: recurso, versión y hash de las partes.
// Cada parte va entrecomillada antes de unirlas.
func (l *ListCache) Key(ctx context.Context, resource string, parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = strconv.Quote(p)
	}
	sum := sha256.Sum256([]byte(strings.Join(quoted, "|")))
	return fmt.Sprintf("list:%s:v%d:%s", resource, l.version(ctx, resource), hex.EncodeToString(sum[:16]))
}

// Get trata cualquier error como un miss.
func (l *ListCache) Get(ctx context.Context, key string, dest interface{}) bool {
	hit, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		l.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

// Put guarda en segundo plano.
func (l *ListCache) Put(ctx context.Context, key string, value interface{}) {
	AsyncCacheSet(ctx, l.cache, key, value, l.ttlSecs, l.log)
}

// Invalidate incrementa la versión del recurso.
func (l *ListCache) Invalidate(ctx context.Context, resource string) {
	if counter, ok := l.cache.(Counter); ok {
		if _, err := counter.Incr(ctx, versionKey(resource)); err != nil {
			l.log.Warn("Cache invalidation failed", zap.String("resource", resource), zap.Error(err))
		}
		return
	}
	next := l.version(ctx, resource) + 1
	if err := l.cache.Set(ctx, versionKey(resource), next, 0); err != nil {
		l.log.Warn("Cache invalidation failed", zap.String("resource", resource), zap.Error(err))
	}
}
