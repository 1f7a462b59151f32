package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
)

// ErrNoToken no token was carried by the request
var ErrNoToken = errors.New("No token found in request")

// AppTokenClaims claims issued by the auth service, the subject is the user id
type AppTokenClaims struct {
	Email string `json:"email"`

	jwt.StandardClaims
}

// UserID id of the token owner
func (tk *AppTokenClaims) UserID() string {
	return tk.Subject
}

// TimeRemaining remaining time before the token get expired
func (tk *AppTokenClaims) TimeRemaining() time.Duration {
	exp := time.Unix(tk.ExpiresAt, 0)
	now := time.Now()

	if exp.Before(now) {
		return 0
	}
	return exp.Sub(now)
}

// JWTUtil .
type JWTUtil struct {
	secret    []byte
	tokenName string
	method    jwt.SigningMethod
}

// NewJWTUtil create a JWTUtil instance
func NewJWTUtil(method, secret, tokenName string) *JWTUtil {
	var signMethod jwt.SigningMethod
	switch method {
	case "HS256":
		signMethod = jwt.SigningMethodHS256
	case "HS512":
		signMethod = jwt.SigningMethodHS512
	default:
		signMethod = jwt.SigningMethodHS256
	}
	return &JWTUtil{
		method:    signMethod,
		secret:    []byte(secret),
		tokenName: tokenName,
	}
}

// Sign sign token
func (ju *JWTUtil) Sign(claims *AppTokenClaims) (string, error) {
	token := jwt.NewWithClaims(ju.method, claims)
	return token.SignedString(ju.secret)
}

// Validate validate token string with secret and return AppTokenClaims
func (ju *JWTUtil) Validate(tokenStr string) (*AppTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AppTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != ju.method.Alg() {
			return nil, fmt.Errorf("Unexpected signing method: %s", token.Method.Alg())
		}
		return ju.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims := token.Claims.(*AppTokenClaims)
	if claims.Subject == "" {
		return nil, errors.New("Token has no subject")
	}
	return claims, nil
}

// ClearClientToken clear client cookie
func (ju *JWTUtil) ClearClientToken(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     ju.tokenName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now(),
	})
}

// SetContextToken set token in App context
func (ju *JWTUtil) SetContextToken(c echo.Context, token *AppTokenClaims) {
	c.Set(ju.tokenName, token)
}

// GetContextToken get token from App context
func (ju *JWTUtil) GetContextToken(c echo.Context) *AppTokenClaims {
	v, ok := c.Get(ju.tokenName).(*AppTokenClaims)
	if ok {
		return v
	}
	return nil
}

// ExtractToken get token string from request, the Authorization header wins over the cookie
func (ju *JWTUtil) ExtractToken(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			if token := strings.TrimSpace(header[len("Bearer "):]); token != "" {
				return token, nil
			}
		}
		return "", ErrNoToken
	}
	cookie, err := c.Cookie(ju.tokenName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}

// RevokedKey kv key marking tokenStr as signed out
func RevokedKey(tokenStr string) string {
	return "jwt:revoked:" + tokenStr
}
