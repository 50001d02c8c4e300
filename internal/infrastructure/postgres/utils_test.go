package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/authlog-api/internal/domain"
)

func TestMapWriteError(t *testing.T) {
	unique := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	other := errors.New("conexión perdida")

	assert.ErrorIs(t, mapWriteError(unique), domain.ErrConflict)
	assert.ErrorIs(t, mapWriteError(fk), domain.ErrConcurrencyConflict)
	assert.Equal(t, other, mapWriteError(other))
	assert.NoError(t, mapWriteError(nil))
}

func TestRequireAffected(t *testing.T) {
	assert.ErrorIs(t, requireAffected(pgconn.NewCommandTag("DELETE 0")), domain.ErrConcurrencyConflict)
	assert.NoError(t, requireAffected(pgconn.NewCommandTag("UPDATE 1")))
}

func TestUpMigrations_OrdenadasYSoloUp(t *testing.T) {
	files, err := upMigrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_identity.up.sql", "0002_audit_logs.up.sql"}, files)
}
