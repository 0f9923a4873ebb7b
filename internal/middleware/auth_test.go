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

const testSecret = "mw-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func protected(t *testing.T, header string, roles ...string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/customers", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	require.NoError(t, JWTAuth(testSecret)(h)(c))
	return rec, c
}

func TestJWTAuth_ValidTokenSetsContext(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "host", "role": "STAFF", "exp": time.Now().Add(time.Minute).Unix(),
	})
	rec, c := protected(t, "Bearer "+tok, "STAFF")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "host", c.Get(CtxStaffID))
	assert.Equal(t, "STAFF", c.Get(CtxRole))
}

func TestJWTAuth_Rejections(t *testing.T) {
	future := time.Now().Add(time.Minute).Unix()
	cases := map[string]string{
		"no header":    "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "host", "exp": future}),
		"expired":      "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "host", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no expiry":    "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "host"}),
		"no subject":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future}),
		"int subject":  "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": 7, "exp": future}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := protected(t, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "guest", "role": "GUEST", "exp": time.Now().Add(time.Minute).Unix(),
	})
	rec, _ := protected(t, "Bearer "+tok, "STAFF")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	tok = sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "host", "exp": time.Now().Add(time.Minute).Unix(),
	})
	rec, _ = protected(t, "Bearer "+tok, "STAFF")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
