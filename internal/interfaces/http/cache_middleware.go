package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/infrastructure/cache"
)

// HeaderCache indica HIT o MISS en las lecturas cacheadas.
const HeaderCache = "X-Cache"

// CacheResponses sirve GET exitosos desde la caché de respuestas. La clave incluye usuario,
// tenant, boutique y parámetros, así que dos usuarios nunca comparten entrada.
// Los fallos del backend degradan a lectura directa.
func CacheResponses(store cache.Cache, endpoint string, log zerolog.Logger) fiber.Handler {
	ttl := cache.TTLFor(endpoint)
	return func(c *fiber.Ctx) error {
		if store == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		sc := Security(c)
		params := map[string]string{"_path": c.Path()}
		c.Context().QueryArgs().VisitAll(func(k, v []byte) {
			params[string(k)] = string(v)
		})
		ctx := c.UserContext()
		// La generación se lee antes del handler: si una invalidación llega mientras se
		// calcula la respuesta, el Set posterior cae en una clave de la generación vieja.
		gen, err := store.Generation(ctx, endpoint, sc.TenantID)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("caché: generación no disponible")
			return c.Next()
		}
		key := cache.Key(cache.Request{
			Endpoint:    endpoint,
			UserID:      sc.UserID,
			TenantID:    sc.TenantID,
			WarehouseID: sc.WarehouseID,
			Params:      params,
			Generation:  gen,
		})

		if body, ok, err := store.Get(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("caché: lectura fallida")
		} else if ok {
			c.Set(HeaderCache, "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}
		c.Set(HeaderCache, "MISS")
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Set(ctx, key, body, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("caché: escritura fallida")
		}
		return nil
	}
}
