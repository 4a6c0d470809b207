package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/models"
)

const (
	ctxSessionID = "sessionID"
	ctxPrincipal = "principal"
)

// sessionMiddleware guarantees every request carries a session identifier,
// issuing a fresh uuid cookie when the browser has none yet.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	cfg := s.config.Session
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(cfg.CookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		}
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// requireAuth resolves the session's principal and aborts with 401 when the
// session is anonymous. Handlers behind it read the principal from context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetString(ctxSessionID)
		principal, err := s.identity.Current(c.Request.Context(), sid)
		if err != nil {
			s.logger.Error("Failed to resolve principal", zap.Error(err))
			c.AbortWithStatusJSON(500, gin.H{"error": "internal error"})
			return
		}
		if principal == nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "login required"})
			return
		}
		c.Set(ctxPrincipal, principal)
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *models.Principal {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return nil
	}
	return v.(*models.Principal)
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
