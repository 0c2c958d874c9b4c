package middleware

import (
	"errors"
	"net/http"
	"strings"

	pkgAuth "tonk-service/pkg/auth"
	"tonk-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "userID"
	ContextUsernameKey = "username"
	ContextAdminIDKey  = "adminID"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := pkgAuth.ParseUserToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserIDKey, claims.SubjectID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

func AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := pkgAuth.ParseAdminToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid admin token")
			return
		}

		c.Set(ContextAdminIDKey, claims.SubjectID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and lets anonymous
// requests through otherwise. Spectator endpoints use it.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err == nil {
			if claims, err := pkgAuth.ParseUserToken(token); err == nil {
				c.Set(ContextUserIDKey, claims.SubjectID)
				c.Set(ContextUsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// extractToken accepts the Authorization header or a token query parameter;
// browsers cannot set headers on websocket upgrades.
func extractToken(c *gin.Context) (string, error) {
	if q := strings.TrimSpace(c.Query("token")); q != "" {
		return q, nil
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
