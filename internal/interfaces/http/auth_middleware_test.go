package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/authlog-api/internal/domain"
	apphttp "github.com/jhoicas/authlog-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/authlog-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "authlog-test"
	testExpMin    = 60
)

func testSigner(t *testing.T) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, testExpMin)
	require.NoError(t, err)
	return s
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(t *testing.T, allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testSigner(t)),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"ok":    true,
				"roles": apphttp.GetRoles(c),
			})
		},
	)
	return app
}

// tokenWithRoles genera un JWT con los roles indicados.
func tokenWithRoles(t *testing.T, roles ...string) string {
	t.Helper()
	tok, _, err := testSigner(t).Generate(testUserID, "tester", roles)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, tokenWithRoles(t, "Admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Admin debe poder acceder a ruta restringida a Admin")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
}

func TestRequireRole_UnoDeVariosRoles(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, tokenWithRoles(t, "Editors", "Admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_SinRolAdmin_Retorna403(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, tokenWithRoles(t, "Editors"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_NombreDeRolSinDistinguirMayusculas(t *testing.T) {
	app := buildTestApp(t, "Admin")
	for _, role := range []string{"admin", "ADMIN"} {
		resp := doRequest(t, app, tokenWithRoles(t, role))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, role)
	}
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestRequireRole_FormatoSinBearer_Retorna401(t *testing.T) {
	app := buildTestApp(t, "Admin")
	resp := doRequest(t, app, "Token abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testSigner(t)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"user_name": apphttp.GetUserName(c),
			"roles":     apphttp.GetRoles(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenWithRoles(t, "Admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID   string   `json:"user_id"`
		UserName string   `json:"user_name"`
		Roles    []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body.UserID)
	assert.Equal(t, "tester", body.UserName)
	assert.Equal(t, []string{"Admin"}, body.Roles)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireCurrentRole: pertenencia vigente en el store
// ──────────────────────────────────────────────────────────────────────────────

type stubChecker struct {
	ok  bool
	err error
}

func (s stubChecker) HasRole(_ context.Context, _, _ string) (bool, error) { return s.ok, s.err }

func currentRoleApp(t *testing.T, checker apphttp.RoleChecker) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testSigner(t)),
		apphttp.RequireRole("Admin"),
		apphttp.RequireCurrentRole(checker, "Admin"),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireCurrentRole_RolVigente(t *testing.T) {
	resp := doRequest(t, currentRoleApp(t, stubChecker{ok: true}), tokenWithRoles(t, "Admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireCurrentRole_RolRetiradoRetorna403(t *testing.T) {
	resp := doRequest(t, currentRoleApp(t, stubChecker{ok: false}), tokenWithRoles(t, "Admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "el token aún dice Admin pero el store no")
}

func TestRequireCurrentRole_ErrorDeStoreRetorna500(t *testing.T) {
	checker := stubChecker{err: domain.Persistence("buscar rol", errors.New("conexión cerrada"))}
	resp := doRequest(t, currentRoleApp(t, checker), tokenWithRoles(t, "Admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
