package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
)

func newTestIssuer() *TokenIssuer {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-for-unit-tests"
	cfg.JWT.Issuer = "civicpulse-test"
	cfg.JWT.TTLMinutes = 60
	return NewTokenIssuer(cfg)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, CheckPassword(hash, "correct-horse-battery"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong-password"), ErrInvalidCredentials)
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestIssueAndVerifyToken(t *testing.T) {
	issuer := newTestIssuer()
	p := profile.NewProfile("vera@example.com", "hash", "Vera", "Santos")
	p.Role = profile.RoleAdmin

	token, err := issuer.Issue(p)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.UserID)
	assert.Equal(t, profile.RoleAdmin, claims.Role)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := newTestIssuer()
	p := profile.NewProfile("vera@example.com", "hash", "Vera", "Santos")

	token, err := issuer.Issue(p)
	require.NoError(t, err)

	_, err = issuer.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer()

	other := &config.Config{}
	other.JWT.Secret = "a-different-secret-entirely"
	other.JWT.Issuer = "civicpulse-test"
	other.JWT.TTLMinutes = 60
	otherIssuer := NewTokenIssuer(other)

	p := profile.NewProfile("vera@example.com", "hash", "Vera", "Santos")
	token, err := otherIssuer.Issue(p)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func setupMiddlewareRouter(issuer *TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	router.GET("/admin", RequireAuth(issuer), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	issuer := newTestIssuer()
	router := setupMiddlewareRouter(issuer)

	// No header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, w.Body.String())

	// Malformed header
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token
	p := profile.NewProfile("vera@example.com", "hash", "Vera", "Santos")
	token, err := issuer.Issue(p)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	issuer := newTestIssuer()
	router := setupMiddlewareRouter(issuer)

	resident := profile.NewProfile("res@example.com", "hash", "Res", "Ident")
	residentToken, err := issuer.Issue(resident)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+residentToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "Admin access required"}`, w.Body.String())

	admin := profile.NewProfile("adm@example.com", "hash", "Adm", "In")
	admin.Role = profile.RoleAdmin
	adminToken, err := issuer.Issue(admin)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
