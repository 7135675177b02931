package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"distributed-lru-cache/internal/handlers"
	"distributed-lru-cache/internal/realtime"
	"distributed-lru-cache/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := memory.New(memory.Options{})
	t.Cleanup(s.Close)
	hash, err := bcrypt.GenerateFromPassword([]byte("test-api-key"), bcrypt.MinCost)
	require.NoError(t, err)
	return SetupRoutes(&handlers.API{Store: s, Hub: realtime.NewHub(), APIKeyHash: hash})
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStoreRoutes_RequireAuth(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/store/keys/k", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
