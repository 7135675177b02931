package handlers

import (
	"net/http"

	"distributed-lru-cache/internal/auth"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// TokenRequest represents the token exchange payload
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

// TokenResponse represents the token exchange response
type TokenResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// Token exchanges the shared API key for a JWT
// POST /api/token
func (a *API) Token(c *gin.Context) {
	var req TokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. client_id and api_key are required.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword(a.APIKeyHash, []byte(req.APIKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid API key",
		})
		return
	}

	token, err := auth.GenerateToken(req.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:    token,
		ClientID: req.ClientID,
		Message:  "Token issued",
	})
}
