package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios no saben si corren en transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeLockNotAvailable    = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapErr traduce errores de PostgreSQL a los sentinels de dominio, conservando la operación.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrDuplicate)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrConflict)
		case codeCheckViolation:
			return domain.NewInvariant(fmt.Sprintf("%s: restricción %s", op, pgErr.ConstraintName))
		case codeSerialization, codeDeadlock, codeLockNotAvailable:
			return fmt.Errorf("%s: %s: %w", op, pgErr.Code, domain.ErrTransient)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// noRows convierte pgx.ErrNoRows en (nil, nil), la convención de los repositorios.
func noRows[T any](v *T, op string, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return v, nil
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// filter acumula condiciones WHERE con placeholders "?" que se renumeran a $n.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, args ...any) {
	var b strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' && i < len(args) {
			f.args = append(f.args, args[i])
			b.WriteString("$" + strconv.Itoa(len(f.args)))
			i++
			continue
		}
		b.WriteRune(r)
	}
	f.conds = append(f.conds, b.String())
}

func (f *filter) eq(col string, v string) {
	if v != "" {
		f.add(col+" = ?", v)
	}
}

func (f *filter) eqInt(col string, v *int64) {
	if v != nil {
		f.add(col+" = ?", *v)
	}
}

func (f *filter) eqBool(col string, v *bool) {
	if v != nil {
		f.add(col+" = ?", *v)
	}
}

func (f *filter) between(col string, from, to *time.Time) {
	if from != nil {
		f.add(col+" >= ?", *from)
	}
	if to != nil {
		f.add(col+" <= ?", *to)
	}
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page añade LIMIT/OFFSET como parámetros. Limit 0 = sin límite.
func (f *filter) page(p repository.Page) string {
	var b strings.Builder
	if p.Limit > 0 {
		f.args = append(f.args, p.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(f.args)))
	}
	if p.Offset > 0 {
		f.args = append(f.args, p.Offset)
		b.WriteString(" OFFSET $" + strconv.Itoa(len(f.args)))
	}
	return b.String()
}

// count ejecuta SELECT count(*) con el mismo FROM y WHERE que el listado.
func count(ctx context.Context, q Querier, from string, f *filter, op string) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, "SELECT count(*) FROM "+from+f.where(), f.args...).Scan(&n); err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, op string, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := make([]*T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

// list ejecuta el conteo y la página con el mismo filtro.
func list[T any](ctx context.Context, q Querier, sel, from, order string, f filter, p repository.Page, op string, scan func(pgx.Row) (*T, error)) ([]*T, int64, error) {
	total, err := count(ctx, q, from, &f, op)
	if err != nil {
		return nil, 0, err
	}
	sql := "SELECT " + sel + " FROM " + from + f.where() + " ORDER BY " + order
	sql += f.page(p)
	rows, err := q.Query(ctx, sql, f.args...)
	if err != nil {
		return nil, 0, mapErr(op, err)
	}
	items, err := collect(rows, op, scan)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
