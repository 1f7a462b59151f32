package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaims(subject string, ttl time.Duration) *AppTokenClaims {
	return &AppTokenClaims{
		Email: "ada@example.com",
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
}

func TestSignAndValidate(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "access_token")
	tokenStr, err := ju.Sign(newClaims("u1", time.Hour))
	require.NoError(t, err)

	claims, err := ju.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.True(t, claims.TimeRemaining() > 0)

	other := NewJWTUtil("HS256", "another", "access_token")
	_, err = other.Validate(tokenStr)
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "access_token")

	expired, _ := ju.Sign(newClaims("u1", -time.Hour))
	_, err := ju.Validate(expired)
	assert.Error(t, err)

	anonymous, _ := ju.Sign(newClaims("", time.Hour))
	_, err = ju.Validate(anonymous)
	assert.Error(t, err)

	hs512, _ := NewJWTUtil("HS512", "secret", "access_token").Sign(newClaims("u1", time.Hour))
	_, err = ju.Validate(hs512)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	e := echo.New()
	ju := NewJWTUtil("HS256", "secret", "access_token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie"})
	token, err := ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie"})
	token, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "cookie", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic xyz")
	_, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, ErrNoToken, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, ErrNoToken, err)
}
