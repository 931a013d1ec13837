package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/cache"
)

func TestFingerprint_OrdenDeParametrosNoImporta(t *testing.T) {
	a := cache.Request{Endpoint: "products", UserID: 1, TenantID: "T1", Params: map[string]string{"page": "2", "active": "true"}}
	b := cache.Request{Endpoint: "products", UserID: 1, TenantID: "T1", Params: map[string]string{"active": "true", "page": "2"}}
	assert.Equal(t, cache.Fingerprint(a), cache.Fingerprint(b))
	assert.Len(t, cache.Fingerprint(a), 16)

	wh := int64(3)
	c := a
	c.WarehouseID = &wh
	assert.NotEqual(t, cache.Fingerprint(a), cache.Fingerprint(c))

	d := a
	d.UserID = 2
	assert.NotEqual(t, cache.Fingerprint(a), cache.Fingerprint(d))
}

func TestKey_PrefijoPorTenant(t *testing.T) {
	k1 := cache.Key(cache.Request{Endpoint: "stocks", TenantID: "T1"})
	k2 := cache.Key(cache.Request{Endpoint: "stocks", TenantID: "T2"})
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "stocks:tenant:T1:")
	assert.Contains(t, cache.Key(cache.Request{Endpoint: "stocks"}), "stocks:tenant:_all:")
}

func TestTTLFor(t *testing.T) {
	assert.Equal(t, 3*time.Minute, cache.TTLFor(ports.EndpointStocks))
	assert.Equal(t, 5*time.Minute, cache.TTLFor(ports.EndpointProducts))
	assert.Equal(t, cache.DefaultTTL, cache.TTLFor(ports.EndpointInvoices))
}

// ─── MemoryCache ─────────────────────────────────────────────────────────────

func TestMemoryCache_ExpiraPorTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 14, 10, 0, 0, 0, time.UTC)
	c := cache.NewMemoryCache().WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_InvalidaSoloElTenantYLosListadosDePlataforma(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	t1 := cache.Key(cache.Request{Endpoint: ports.EndpointProducts, TenantID: "T1"})
	t2 := cache.Key(cache.Request{Endpoint: ports.EndpointProducts, TenantID: "T2"})
	all := cache.Key(cache.Request{Endpoint: ports.EndpointProducts})
	st1 := cache.Key(cache.Request{Endpoint: ports.EndpointStocks, TenantID: "T1"})
	for _, k := range []string{t1, t2, all, st1} {
		require.NoError(t, c.Set(ctx, k, []byte("x"), 0))
	}

	require.NoError(t, c.InvalidateTenant(ctx, "T1", ports.EndpointProducts))

	_, ok, _ := c.Get(ctx, t1)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, all)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, t2)
	assert.True(t, ok, "otro tenant intacto")
	_, ok, _ = c.Get(ctx, st1)
	assert.True(t, ok, "otro endpoint intacto")

	require.NoError(t, c.InvalidateTenant(ctx, "T1"))
	_, ok, _ = c.Get(ctx, st1)
	assert.False(t, ok, "sin endpoints se invalidan todos")
}

func TestMemoryCache_EscrituraTardiaTrasInvalidarNoSeLee(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	req := cache.Request{Endpoint: ports.EndpointStocks, TenantID: "T1", UserID: 1}

	// una lectura en curso toma la generación antes de la invalidación
	gen, err := c.Generation(ctx, ports.EndpointStocks, "T1")
	require.NoError(t, err)
	req.Generation = gen

	require.NoError(t, c.InvalidateTenant(ctx, "T1", ports.EndpointStocks))
	require.NoError(t, c.Set(ctx, cache.Key(req), []byte("viejo"), time.Minute))

	fresh, err := c.Generation(ctx, ports.EndpointStocks, "T1")
	require.NoError(t, err)
	assert.Equal(t, gen+1, fresh)
	req.Generation = fresh
	_, ok, err := c.Get(ctx, cache.Key(req))
	require.NoError(t, err)
	assert.False(t, ok, "la respuesta calculada antes del commit no se sirve")

	plat, err := c.Generation(ctx, ports.EndpointStocks, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), plat, "los listados de plataforma también avanzan")
	other, err := c.Generation(ctx, ports.EndpointStocks, "T2")
	require.NoError(t, err)
	assert.Zero(t, other)
}
