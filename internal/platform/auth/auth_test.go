package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sub":  c.GetString(CtxUserIDKey),
			"role": c.GetString(CtxRoleKey),
		})
	})
	r.GET("/protected", chain...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsIssuedToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue("user-1", RoleStudent, time.Now())
	require.NoError(t, err)

	r := newRouter(RequireAuth(testSecret))
	w := doGet(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"user-1"`)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
}

func TestRequireAuthRejections(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	expired, err := issuer.Issue("user-1", RoleStudent, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	wrongKey, err := NewTokenIssuer([]byte("other-secret"), time.Hour).Issue("user-1", RoleStudent, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}
	r := newRouter(RequireAuth(testSecret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	r := newRouter(RequireAuth(testSecret), RequireElevated())

	student, err := issuer.Issue("user-1", RoleStudent, time.Now())
	require.NoError(t, err)
	w := doGet(r, "Bearer "+student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	librarian, err := issuer.Issue("user-2", RoleLibrarian, time.Now())
	require.NoError(t, err)
	w = doGet(r, "Bearer "+librarian)
	assert.Equal(t, http.StatusOK, w.Code)

	admin, err := issuer.Issue("user-3", RoleAdmin, time.Now())
	require.NoError(t, err)
	w = doGet(r, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsElevated(t *testing.T) {
	assert.True(t, IsElevated(RoleLibrarian))
	assert.True(t, IsElevated(RoleAdmin))
	assert.False(t, IsElevated(RoleStudent))
	assert.False(t, IsElevated(RoleFaculty))
	assert.False(t, IsElevated(""))
}

func TestResetTokenKeyedOnPasswordHash(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.IssueResetToken("user-1", "hash-v1", time.Now())
	require.NoError(t, err)

	sub, err := issuer.VerifyResetToken(token, "hash-v1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	// Changing the password invalidates outstanding reset tokens.
	_, err = issuer.VerifyResetToken(token, "hash-v2")
	assert.Error(t, err)
}
