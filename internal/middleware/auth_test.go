package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtsvc "photodrop/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(jwt *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AdminAuth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"admin_id":    c.GetInt64("admin_id"),
			"admin_email": c.GetString("admin_email"),
		})
	})
	return r
}

func getProtected(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAdminAuthValidToken(t *testing.T) {
	jwt := jwtsvc.New("secret", time.Hour)
	token, err := jwt.GenerateToken(7, "admin@example.com")
	require.NoError(t, err)

	resp := getProtected(authRouter(jwt), "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"admin_id":7`)
	assert.Contains(t, resp.Body.String(), "admin@example.com")
}

func TestAdminAuthMissingHeader(t *testing.T) {
	resp := getProtected(authRouter(jwtsvc.New("secret", time.Hour)), "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminAuthMalformedHeader(t *testing.T) {
	resp := getProtected(authRouter(jwtsvc.New("secret", time.Hour)), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminAuthWrongSecret(t *testing.T) {
	other := jwtsvc.New("other-secret", time.Hour)
	token, err := other.GenerateToken(7, "admin@example.com")
	require.NoError(t, err)

	resp := getProtected(authRouter(jwtsvc.New("secret", time.Hour)), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminAuthExpiredToken(t *testing.T) {
	jwt := jwtsvc.New("secret", -time.Minute)
	token, err := jwt.GenerateToken(7, "admin@example.com")
	require.NoError(t, err)

	resp := getProtected(authRouter(jwt), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
