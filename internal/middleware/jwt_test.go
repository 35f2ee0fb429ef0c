package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/coursework-api/internal/middleware"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/utils"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   uint(42),
		"role":  "student",
		"name":  "Jane Student",
		"email": "jane@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(expiresIn).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		claim, ok := middleware.ClaimFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "no claim")
		}
		return utils.SendSuccess(c, "ok", claim)
	})

	return app
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, -time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "other-secret", time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Get("/instructors-only",
		func(c *fiber.Ctx) error {
			role := c.Get("X-Role")
			if role != "" {
				middleware.SetClaim(c, middleware.Claim{ID: 1, Role: models.Role(role)})
			}
			return c.Next()
		},
		middleware.RequireRole(models.RoleInstructor),
		func(c *fiber.Ctx) error {
			return utils.SendSuccess(c, "ok", nil)
		},
	)

	cases := []struct {
		role   string
		status int
	}{
		{"instructor", fiber.StatusOK},
		{"student", fiber.StatusForbidden},
		{"admin", fiber.StatusForbidden},
		{"", fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/instructors-only", nil)
		if tc.role != "" {
			req.Header.Set("X-Role", tc.role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "role %q", tc.role)
		resp.Body.Close()
	}
}
