package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/scm-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila referenciada no existe.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// guardMiss explica un UPDATE condicionado que no afectó filas: la fila no existe
// (ErrNotFound) o la condición de cantidad no se cumplió (ErrConflict).
// table es siempre una constante del paquete.
func guardMiss(ctx context.Context, q Querier, table, id, reason string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %s", domain.ErrConflict, reason)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// argList acumula argumentos posicionales ($1, $2, ...) para consultas con filtros opcionales.
type argList struct {
	args []any
}

// add agrega el valor y devuelve su marcador.
func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

// productFilter agrega "AND <col> = ANY($n)" cuando hay productos; vacío = todos.
func (a *argList) productFilter(col string, productIDs []string) string {
	if len(productIDs) == 0 {
		return ""
	}
	return fmt.Sprintf(" AND %s = ANY(%s)", col, a.add(productIDs))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
