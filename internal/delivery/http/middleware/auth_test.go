package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anondate/anondate-backend/internal/delivery/http/middleware"
	"github.com/anondate/anondate-backend/internal/repository/memory"
	"github.com/anondate/anondate-backend/internal/repository/redissession"
	"github.com/anondate/anondate-backend/internal/usecase/auth"
)

func setupEngine(t *testing.T) (*gin.Engine, *miniredis.Miniredis, *auth.UseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	uc := auth.NewUseCase(
		store.Users(), store.Profiles(), store.Preferences(),
		redissession.NewSessionRepository(client),
		"middleware-test-secret-long-enough!!", time.Hour,
	)

	engine := gin.New()
	engine.GET("/protected", middleware.NewAuthMiddleware(uc).RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return engine, mr, uc
}

func get(engine *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRequireAuthMissingToken(t *testing.T) {
	engine, _, _ := setupEngine(t)
	assert.Equal(t, http.StatusUnauthorized, get(engine, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(engine, "Basic abc").Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	engine, _, _ := setupEngine(t)
	assert.Equal(t, http.StatusForbidden, get(engine, "Bearer garbage").Code)
}

func TestRequireAuthValidToken(t *testing.T) {
	engine, _, uc := setupEngine(t)
	res, err := uc.Signup(context.Background(), &auth.SignupRequest{
		Email: "amy@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(engine, "Bearer "+res.Token).Code)
}

// A session-store outage must surface as an internal error, not as a
// rejected token.
func TestRequireAuthSessionStoreFailure(t *testing.T) {
	engine, mr, uc := setupEngine(t)
	res, err := uc.Signup(context.Background(), &auth.SignupRequest{
		Email: "amy@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)

	mr.SetError("connection refused")
	assert.Equal(t, http.StatusInternalServerError, get(engine, "Bearer "+res.Token).Code)

	mr.SetError("")
	assert.Equal(t, http.StatusOK, get(engine, "Bearer "+res.Token).Code)
}
