package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// writeError
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteError_MapeoDeEstados(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validacion", domain.NewValidationError("a", "b"), http.StatusBadRequest, "VALIDATION"},
		{"conflicto", domain.ErrConflict, http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.NewNotFoundError("el rol", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"credenciales", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"prohibido", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"persistencia", domain.Persistence("mutación auditada", errors.New("disco lleno")), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteError_PersistenciaIncluyeDetalle(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, domain.Persistence("mutación auditada", errors.New("disco lleno")))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, domain.ErrPersistence.Error(), body.Message)
	assert.Contains(t, body.Detail, "disco lleno")
}
