// Package cache caché de respuestas de lectura con claves por tenant e invalidación por prefijo.
package cache

import (
	"context"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
)

// Cache backend de la caché de respuestas. Implementado por Redis y por el mapa en memoria.
// InvalidateTenant incrementa la generación de cada prefijo antes de borrarlo: una escritura
// calculada con la generación anterior queda en una clave que ya nadie lee.
type Cache interface {
	ports.CacheInvalidator
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	// Generation generación vigente del endpoint para el tenant; 0 si nunca se invalidó.
	Generation(ctx context.Context, endpoint, tenantID string) (int64, error)
}

// platformScope segmento usado para listados del operador de plataforma (todos los tenants).
const platformScope = "_all"

// TTLs por endpoint. Los no listados usan DefaultTTL.
var (
	DefaultTTL = 5 * time.Minute
	TTLs       = map[string]time.Duration{
		ports.EndpointProducts: 5 * time.Minute,
		ports.EndpointStocks:   3 * time.Minute,
	}
)

// TTLFor devuelve el TTL del endpoint.
func TTLFor(endpoint string) time.Duration {
	if ttl, ok := TTLs[endpoint]; ok {
		return ttl
	}
	return DefaultTTL
}

// Request datos que identifican una lectura cacheable.
type Request struct {
	Endpoint    string
	UserID      int64
	TenantID    string
	WarehouseID *int64
	Params      map[string]string
	// Generation generación leída antes de ejecutar la lectura.
	Generation int64
}

// TenantPrefix prefijo de todas las claves de un endpoint para un tenant.
func TenantPrefix(endpoint, tenantID string) string {
	if tenantID == "" {
		tenantID = platformScope
	}
	return endpoint + ":tenant:" + tenantID + ":"
}

// Key clave completa: prefijo del tenant, generación y huella de la petición.
// El tenant forma parte de la clave, así que dos tenants nunca comparten entrada.
func Key(r Request) string {
	return TenantPrefix(r.Endpoint, r.TenantID) + "g" + strconv.FormatInt(r.Generation, 10) + ":" + Fingerprint(r)
}

// generationKey contador de generación de un prefijo. No comparte prefijo con las entradas.
func generationKey(prefix string) string {
	return "gen:" + prefix
}

// Fingerprint hash corto (blake3, 16 hex) de endpoint, usuario, tenant, boutique y parámetros ordenados.
func Fingerprint(r Request) string {
	var b strings.Builder
	b.WriteString(r.Endpoint)
	b.WriteString("|u=")
	b.WriteString(strconv.FormatInt(r.UserID, 10))
	b.WriteString("|t=")
	b.WriteString(r.TenantID)
	b.WriteString("|w=")
	if r.WarehouseID != nil {
		b.WriteString(strconv.FormatInt(*r.WarehouseID, 10))
	}
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(r.Params[k])
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// prefixes prefijos a borrar al mutar datos del tenant: los suyos y los listados de plataforma.
func prefixes(tenantID string, endpoints []string) []string {
	if len(endpoints) == 0 {
		endpoints = ports.AllEndpoints
	}
	out := make([]string, 0, 2*len(endpoints))
	for _, e := range endpoints {
		out = append(out, TenantPrefix(e, tenantID))
		if tenantID != "" {
			out = append(out, TenantPrefix(e, ""))
		}
	}
	return out
}
