package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"distributed-lru-cache/internal/realtime"
	"distributed-lru-cache/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	s := memory.New(memory.Options{})
	t.Cleanup(s.Close)
	hash, err := bcrypt.GenerateFromPassword([]byte("test-api-key"), bcrypt.MinCost)
	require.NoError(t, err)
	return &API{Store: s, Hub: realtime.NewHub(), APIKeyHash: hash}
}

func TestToken_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestAPI(t)

	r := gin.New()
	r.POST("/api/token", api.Token)

	body, _ := json.Marshal(TokenRequest{ClientID: "worker-1", APIKey: "test-api-key"})
	req := httptest.NewRequest(http.MethodPost, "/api/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "worker-1", resp.ClientID)
}

func TestToken_WrongKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestAPI(t)

	r := gin.New()
	r.POST("/api/token", api.Token)

	body, _ := json.Marshal(TokenRequest{ClientID: "worker-1", APIKey: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToken_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestAPI(t)

	r := gin.New()
	r.POST("/api/token", api.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
