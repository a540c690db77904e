package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signedToken(t *testing.T, secret string, sub float64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func runOptional(t *testing.T, authHeader string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/items/2", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := JWTOptional(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	return c
}

func TestJWTOptionalAnonymousPassesThrough(t *testing.T) {
	c := runOptional(t, "")
	assert.Nil(t, c.Get("user_id"))
	assert.Nil(t, c.Get("role"))
}

func TestJWTOptionalSetsClaims(t *testing.T) {
	c := runOptional(t, "Bearer "+signedToken(t, testSecret, 4))
	assert.Equal(t, float64(4), c.Get("user_id"))
	assert.Equal(t, "user", c.Get("role"))
}

func TestJWTOptionalIgnoresBadToken(t *testing.T) {
	c := runOptional(t, "Bearer "+signedToken(t, "wrong-secret", 4))
	assert.Nil(t, c.Get("user_id"))
	assert.Nil(t, c.Get("role"))
}
