package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/taska-backend/internal/service"
	"github.com/Marga-Ghale/taska-backend/internal/session"
)

// AuthMiddleware resolves the bearer token to a session and stores it on the
// request context. The user id is also kept on the gin context for error logs.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Printf("[Auth] Missing Authorization header - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			log.Printf("[Auth] Invalid header format - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		sess, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			log.Printf("[Auth] Invalid token - Path: %s, Error: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", sess.UserID)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(authHeader string) (string, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequestLogger logs all incoming requests with details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		marker := "OK"
		if status >= 400 && status < 500 {
			marker = "WARN"
		} else if status >= 500 {
			marker = "FAIL"
		}

		log.Printf("%s [%s] %s %d - %v", marker, method, path, status, duration)

		for _, e := range c.Errors {
			log.Printf("[Error] %v", e.Err)
		}
	}
}

// GetSession returns the session set by AuthMiddleware, or nil.
func GetSession(c *gin.Context) *session.Session {
	sess, _ := session.FromContext(c.Request.Context())
	return sess
}

// RequireSession writes a 401 and returns false when the request carries no session.
func RequireSession(c *gin.Context) (*session.Session, bool) {
	sess := GetSession(c)
	if sess == nil {
		log.Printf("[Auth] User not authenticated - Path: %s", c.Request.URL.Path)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	return sess, true
}
