package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// ─── filter ──────────────────────────────────────────────────────────────────

func TestFilter_RenumeraPlaceholders(t *testing.T) {
	var f filter
	wh := int64(7)
	active := true
	f.eq("tenant_id", "ACME000001")
	f.eq("kind", "")
	f.eqInt("warehouse_id", &wh)
	f.eqBool("active", &active)
	f.add("created_at >= ? AND created_at < ?", time.Unix(0, 0), time.Unix(10, 0))

	assert.Equal(t,
		" WHERE tenant_id = $1 AND warehouse_id = $2 AND active = $3 AND created_at >= $4 AND created_at < $5",
		f.where())
	assert.Len(t, f.args, 5)
	assert.Equal(t, " LIMIT $6 OFFSET $7", f.page(repository.Page{Limit: 30, Offset: 60}))
	assert.Equal(t, []any{30, 60}, f.args[5:])
}

func TestFilter_SinCondicionesNiLimite(t *testing.T) {
	var f filter
	assert.Empty(t, f.where())
	assert.Empty(t, f.page(repository.Page{}))
	assert.Empty(t, f.args)
}

// ─── mapErr ──────────────────────────────────────────────────────────────────

func TestMapErr_TraduceSQLSTATE(t *testing.T) {
	cases := map[string]error{
		codeUniqueViolation:     domain.ErrDuplicate,
		codeForeignKeyViolation: domain.ErrConflict,
		codeCheckViolation:      domain.ErrInvariantViolation,
		codeSerialization:       domain.ErrTransient,
		codeDeadlock:            domain.ErrTransient,
		codeLockNotAvailable:    domain.ErrTransient,
	}
	for code, want := range cases {
		err := mapErr("op", &pgconn.PgError{Code: code, ConstraintName: "c"})
		assert.ErrorIs(t, err, want, code)
	}
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.NoError(t, mapErr("op", nil))

	other := errors.New("boom")
	assert.ErrorIs(t, mapErr("op", other), other)
}

// ─── store ───────────────────────────────────────────────────────────────────

func TestOptions_ValoresPorDefecto(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, 3, o.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, o.Backoff)
	assert.Equal(t, 5*time.Second, o.LockTimeout)

	o = Options{MaxAttempts: 5, Backoff: time.Second}.withDefaults()
	assert.Equal(t, 5, o.MaxAttempts)
	assert.Equal(t, time.Second, o.Backoff)
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", pgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", pgx5URL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", pgx5URL("pgx5://h/db"))
}

func TestMigracionesEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000002_invoice_sequences_period_only.up.sql")
}
