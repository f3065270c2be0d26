package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizhost-api/internal/config"
)

// AuthHandler выдает административные токены. Аутентификация
// опциональна: без сконфигурированного admin_password_hash
// API работает открыто (dev-режим).
type AuthHandler struct {
	cfg config.AuthConfig
}

// NewAuthHandler создает обработчик аутентификации
func NewAuthHandler(cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Enabled сообщает, требуется ли аутентификация
func (h *AuthHandler) Enabled() bool {
	return h.cfg.AdminPasswordHash != ""
}

// LoginRequest представляет запрос на вход администратора
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login проверяет пароль и возвращает HS256 bearer-токен
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.Enabled() {
		c.JSON(http.StatusOK, gin.H{"auth": "disabled"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	ttl := time.Duration(h.cfg.TokenTTLHrs) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(ttl.Seconds()),
	})
}
