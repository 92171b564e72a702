package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) login(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid login payload", false, nil)
		return
	}
	token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", false, nil)
		return
	}
	writeData(c, http.StatusOK, gin.H{
		"access_token":   token.AccessToken,
		"expires_in_sec": token.ExpiresInSec,
	})
}
