package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/Boutique-api/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones SQL embebidas en el binario.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator abre el origen embebido y la base. databaseURL acepta postgres:// o postgresql://.
func NewMigrator(databaseURL string, log *logger.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// pgx5URL cambia el esquema al del driver pgx/v5 de golang-migrate.
func pgx5URL(u string) string {
	for _, p := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(u, p) {
			return "pgx5://" + strings.TrimPrefix(u, p)
		}
	}
	return u
}

// Up aplica las pendientes. Sin cambios no es error.
func (g *Migrator) Up() error {
	err := g.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		g.log.Info().Msg("migraciones al día")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	v, dirty, _ := g.Version()
	g.log.Info().Uint("version", v).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte todo.
func (g *Migrator) Down() error {
	if err := g.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps n > 0 sube, n < 0 baja.
func (g *Migrator) Steps(n int) error {
	if err := g.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps %d: %w", n, err)
	}
	return nil
}

// Version versión aplicada; 0 si la base está vacía.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

// Force fija la versión sin ejecutar SQL (sale de un estado dirty).
func (g *Migrator) Force(version int) error {
	g.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := g.m.Force(version); err != nil {
		return fmt.Errorf("migrate force %d: %w", version, err)
	}
	return nil
}

func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	return errors.Join(srcErr, dbErr)
}

// ErrSchema el esquema no garantiza la numeración por (boutique, año, mes).
var ErrSchema = errors.New("esquema de invoice_sequences inválido")

// AssertSchema falla si invoice_sequences tiene un índice único solo sobre warehouse_id
// o si falta el único sobre (warehouse_id, year, month). Se ejecuta al arrancar.
func AssertSchema(ctx context.Context, q Querier) error {
	rows, err := q.Query(ctx, `
		SELECT array_agg(a.attname::text ORDER BY k.ord)
		FROM pg_index i
		CROSS JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE i.indrelid = 'invoice_sequences'::regclass AND i.indisunique
		GROUP BY i.indexrelid`)
	if err != nil {
		return mapErr("assert schema", err)
	}
	defer rows.Close()
	period := false
	for rows.Next() {
		var cols []string
		if err := rows.Scan(&cols); err != nil {
			return mapErr("assert schema", err)
		}
		key := strings.Join(cols, ",")
		switch key {
		case "warehouse_id":
			return fmt.Errorf("%w: índice único sobre warehouse_id solo", ErrSchema)
		case "warehouse_id,year,month":
			period = true
		}
	}
	if err := rows.Err(); err != nil {
		return mapErr("assert schema", err)
	}
	if !period {
		return fmt.Errorf("%w: falta el único (warehouse_id, year, month)", ErrSchema)
	}
	return nil
}
