package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolpay_backend/internal/auth"
	"schoolpay_backend/internal/config"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/pkg/apperrors"
	"schoolpay_backend/pkg/contextkeys"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

func newProtectedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(contextkeys.UserIDKey),
			"role":    c.GetString(contextkeys.RoleKey),
		})
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	setTestConfig(t)
	r := newProtectedEngine()

	token, err := auth.GenerateToken("user-1", string(models.UserRoleParent))
	require.NoError(t, err)

	w := doRequest(t, r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, string(models.UserRoleParent), body["role"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	setTestConfig(t)
	r := newProtectedEngine()

	w := doRequest(t, r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeUnauthorized, decodeErrorCode(t, w))
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	setTestConfig(t)
	r := newProtectedEngine()

	w := doRequest(t, r, "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeInvalidToken, decodeErrorCode(t, w))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	setTestConfig(t)
	// A negative TTL issues a token that is already past its expiry.
	config.AppConfig.JWT.TTL = -1
	r := newProtectedEngine()

	token, err := auth.GenerateToken("user-1", string(models.UserRoleParent))
	require.NoError(t, err)

	w := doRequest(t, r, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeTokenExpired, decodeErrorCode(t, w))
}

func TestRequireRoles(t *testing.T) {
	setTestConfig(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), RequireRoles(models.UserRoleSchoolAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	adminToken, err := auth.GenerateToken("admin-1", string(models.UserRoleSchoolAdmin))
	require.NoError(t, err)
	parentToken, err := auth.GenerateToken("parent-1", string(models.UserRoleParent))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+parentToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
