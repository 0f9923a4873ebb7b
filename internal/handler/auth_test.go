package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/lunchly/internal/config"
	"github.com/iliyamo/lunchly/internal/utils"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthHandler(config.Config{
		JWTSecret:         "test-secret",
		AccessTTLMin:      15,
		StaffUsername:     "host",
		StaffPasswordHash: hash,
	})
}

func TestToken_IssuesStaffToken(t *testing.T) {
	h := newAuthHandler(t)

	rec := serve(t, http.MethodPost, "/v1/auth/token", `{"username":"host","password":"s3cret"}`, "/v1/auth/token", nil, h.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	var got tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, utils.RoleStaff, got.Role)

	tok, err := jwt.Parse(got.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	sub, err := tok.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "host", sub)
}

func TestToken_RejectsBadCredentials(t *testing.T) {
	h := newAuthHandler(t)

	for _, body := range []string{
		`{"username":"host","password":"wrong"}`,
		`{"username":"other","password":"s3cret"}`,
	} {
		rec := serve(t, http.MethodPost, "/v1/auth/token", body, "/v1/auth/token", nil, h.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
	}
}

func TestToken_RequiresFields(t *testing.T) {
	h := newAuthHandler(t)
	rec := serve(t, http.MethodPost, "/v1/auth/token", `{"username":"host"}`, "/v1/auth/token", nil, h.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToken_NoHashConfigured(t *testing.T) {
	h := NewAuthHandler(config.Config{JWTSecret: "x", AccessTTLMin: 5, StaffUsername: "host"})
	rec := serve(t, http.MethodPost, "/v1/auth/token", `{"username":"host","password":""}`, "/v1/auth/token", nil, h.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodPost, "/v1/auth/token", `{"username":"host","password":"any"}`, "/v1/auth/token", nil, h.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
