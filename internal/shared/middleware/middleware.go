package middleware

import (
	"net/http"
	"strings"
	"time"

	"karaoke/internal/shared/config"
	"karaoke/internal/shared/utils/response"
	"karaoke/internal/users"
	"karaoke/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by the auth middlewares
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextVenueKey  = "venue_key"
)

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, cfg) {
			return
		}
		c.Next()
	}
}

// authenticate validates the bearer token and stores its claims. On failure
// it writes the response, aborts and returns false.
func authenticate(c *gin.Context, cfg *config.Config) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
		c.Abort()
		return false
	}

	claims, ok := parseAccessToken(cfg, authHeader)
	if !ok {
		logger.GetDefault().LogAuthFailure(c.Request.Context(), "invalid or expired token", c.ClientIP())
		response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
		c.Abort()
		return false
	}

	setClaims(c, claims)
	return true
}

// VenueScope resolves which venue a request acts on. In local mode every
// request acts on the fixed local venue as its owner and no token is needed.
// Otherwise the venue comes from the access token.
func VenueScope(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsLocalMode() {
		return func(c *gin.Context) {
			c.Set(ContextVenueKey, cfg.Storage.LocalVenueKey)
			c.Set(ContextUserRole, string(users.RoleOwner))
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if !authenticate(c, cfg) {
			return
		}
		if c.GetString(ContextVenueKey) == "" {
			response.RespondJSON(c, "error", http.StatusForbidden, "token is not bound to a venue", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireOwner middleware that requires the venue owner role
func RequireOwner() gin.HandlerFunc {
	return RequireRole(string(users.RoleOwner))
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range requiredRoles {
			if userRole == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthWithConfig validates a JWT token if present but doesn't require it
func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseAccessToken(cfg, c.GetHeader("Authorization")); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequestLogger logs every request once it has been served, plus the
// last error a handler attached with c.Error.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
		if err := c.Errors.Last(); err != nil {
			l.LogHTTPError(c, err.Err, c.Writer.Status())
		}
	}
}

func parseAccessToken(cfg *config.Config, authHeader string) (jwt.MapClaims, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	for claim, key := range map[string]string{
		"user_id":   ContextUserID,
		"email":     ContextUserEmail,
		"role":      ContextUserRole,
		"venue_key": ContextVenueKey,
	} {
		if value, ok := claims[claim].(string); ok {
			c.Set(key, value)
		}
	}
}
