package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// parseBody decodifica el JSON; un cuerpo ilegible es un error 400.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidation(map[string]string{"body": "cuerpo inválido"})
	}
	return nil
}

// pathID lee un parámetro de ruta numérico positivo.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidation(map[string]string{name: "identificador inválido"})
	}
	return id, nil
}

// page lee limit/offset o page/page_size.
func page(c *fiber.Ctx) (dto.PageRequest, error) {
	var p dto.PageRequest
	if err := c.QueryParser(&p); err != nil {
		return p, domain.NewValidation(map[string]string{"pagination": "parámetros de paginación inválidos"})
	}
	if err := dto.Validate(p); err != nil {
		return p, err
	}
	return p, nil
}

// queryInt64 parámetro opcional; vacío = nil.
func queryInt64(c *fiber.Ctx, keys ...string) (*int64, error) {
	for _, k := range keys {
		raw := strings.TrimSpace(c.Query(k))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.NewValidation(map[string]string{k: "debe ser un entero"})
		}
		return &n, nil
	}
	return nil, nil
}

// queryBool acepta true/false/1/0; vacío = nil.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidation(map[string]string{key: "debe ser booleano"})
	}
	return &b, nil
}

// queryTime acepta fecha (2006-01-02) o RFC3339. Una fecha "hasta" sin hora cubre el día entero.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.NewValidation(map[string]string{key: "fecha inválida (AAAA-MM-JJ)"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// tenantParam ?entreprise= para estrechar listados.
func tenantParam(c *fiber.Ctx) string {
	if v := c.Query("entreprise"); v != "" {
		return v
	}
	return c.Query("tenant")
}

// listBase ruta usada como base de next/previous.
func listBase(c *fiber.Ctx) string {
	return c.BaseURL() + c.Path()
}
