package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"toolkeeper/internal/middleware"

	"github.com/labstack/echo/v4"
)

const tokenTTL = 12 * time.Hour

// AuthHandlers issues operator tokens. There are no user accounts; a shared
// operator password gates the scanner terminals.
type AuthHandlers struct {
	jwtSecret        string
	operatorPassword string
}

func NewAuthHandlers(jwtSecret, operatorPassword string) *AuthHandlers {
	return &AuthHandlers{jwtSecret: jwtSecret, operatorPassword: operatorPassword}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Operator string `json:"operator"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Operator) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Operator name is required")
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.operatorPassword)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := middleware.GenerateToken(h.jwtSecret, strings.TrimSpace(req.Operator), tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}
