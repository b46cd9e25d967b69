package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/jwt"
	"torrent-catalog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	principals map[string]auth.Principal
	lookups    atomic.Int32
}

func (s *stubStore) FindByID(_ context.Context, id string) (*auth.Principal, error) {
	s.lookups.Add(1)
	p, ok := s.principals[id]
	if !ok {
		return nil, auth.ErrPrincipalNotFound
	}
	return &p, nil
}

func (s *stubStore) FindByUsername(context.Context, string) (*auth.Principal, error) {
	return nil, auth.ErrPrincipalNotFound
}

func (s *stubStore) UpdateBanState(_ context.Context, id string, banned bool, reason string) error {
	p := s.principals[id]
	p.Banned = banned
	p.BanReason = reason
	s.principals[id] = p
	return nil
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupAuth(t *testing.T) (*jwt.Service, *stubStore, *auth.Resolver) {
	t.Helper()
	jwtService := jwt.NewService("test-secret-key")
	store := &stubStore{principals: map[string]auth.Principal{
		"user-1":  {ID: "user-1", Username: "alice", Role: auth.RoleUser},
		"mod-1":   {ID: "mod-1", Username: "bob", Role: auth.RoleModerator},
		"admin-1": {ID: "admin-1", Username: "carol", Role: auth.RoleAdmin},
	}}
	return jwtService, store, auth.NewResolver(jwtService, store, logger.New())
}

func tokenFor(t *testing.T, jwtService *jwt.Service, id string, role auth.Role) string {
	t.Helper()
	token, err := jwtService.GenerateToken(id, string(role))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_AnonymousPassesThrough(t *testing.T) {
	_, _, resolver := setupAuth(t)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"anonymous": CurrentPrincipal(c) == nil})
	})

	w := doRequest(router, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous": true}`, w.Body.String())
}

func TestRequireRole_ValidToken(t *testing.T) {
	jwtService, _, resolver := setupAuth(t)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", RequireRole(auth.RoleUser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "user_role": c.GetString("user_role")})
	})

	w := doRequest(router, "Bearer "+tokenFor(t, jwtService, "user-1", auth.RoleUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "user-1", "user_role": "user"}`, w.Body.String())
}

func TestRequireRole_UnauthenticatedCases(t *testing.T) {
	jwtService, _, resolver := setupAuth(t)
	expired := jwt.NewService("test-secret-key", jwt.WithClock(func() time.Time {
		return time.Now().Add(-5 * time.Hour)
	}))
	expiredToken, err := expired.GenerateToken("admin-1", "admin")
	require.NoError(t, err)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", RequireRole(auth.RoleModerator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	headers := map[string]string{
		"no header":      "",
		"invalid format": "InvalidFormat " + tokenFor(t, jwtService, "admin-1", auth.RoleAdmin),
		"invalid token":  "Bearer invalid-token",
		"expired token":  "Bearer " + expiredToken,
		"unknown user":   "Bearer " + tokenFor(t, jwtService, "ghost", auth.RoleAdmin),
	}

	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Authentication required", body["error"])
		})
	}
}

func TestRequireRole_InsufficientRoleIsForbidden(t *testing.T) {
	jwtService, _, resolver := setupAuth(t)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", RequireRole(auth.RoleModerator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := doRequest(router, "Bearer "+tokenFor(t, jwtService, "user-1", auth.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, "Bearer "+tokenFor(t, jwtService, "admin-1", auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_BannedMidSession(t *testing.T) {
	jwtService, store, resolver := setupAuth(t)
	header := "Bearer " + tokenFor(t, jwtService, "user-1", auth.RoleUser)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", RequireRole(auth.RoleUser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, doRequest(router, header).Code)

	require.NoError(t, store.UpdateBanState(context.Background(), "user-1", true, "abuse"))

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, header).Code)
}

func TestCurrentPrincipal_ResolvedOncePerRequest(t *testing.T) {
	jwtService, store, resolver := setupAuth(t)

	router := setupTestRouter()
	router.Use(AuthMiddleware(resolver))
	router.GET("/test", RequireRole(auth.RoleUser), func(c *gin.Context) {
		first := CurrentPrincipal(c)
		second := auth.PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"same": first == second})
	})

	w := doRequest(router, "Bearer "+tokenFor(t, jwtService, "mod-1", auth.RoleModerator))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"same": true}`, w.Body.String())
	assert.Equal(t, int32(1), store.lookups.Load())
}

func TestCurrentPrincipal_NoMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"anonymous": CurrentPrincipal(c) == nil})
	})

	w := doRequest(router, "")
	assert.JSONEq(t, `{"anonymous": true}`, w.Body.String())
}

func TestRateLimitMiddleware_NilClientDisabled(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimitMiddleware(nil, 1, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	}
}
