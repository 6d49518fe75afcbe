package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"
	"payflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys set by the authenticators below.
const (
	CtxMerchant = "merchant"
	CtxUserID   = "user_id"
	CtxEmail    = "email"
	CtxRole     = "role"
)

// BasicAuth authenticates /v1/* requests against the merchant API key
// store: Authorization: Basic base64(key_id:key_secret). On success it
// attaches the resolved merchant to the request context.
func BasicAuth(keyStore ports.KeyStoreService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyID, keySecret, ok := parseBasicAuth(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperror.Unauthenticated("invalid credentials"))
			c.Abort()
			return
		}

		merchant, err := keyStore.ResolveKey(c.Request.Context(), keyID, keySecret)
		if err != nil {
			log.Error().Err(err).Msg("resolving api key")
			response.Error(c, apperror.Internal(err))
			c.Abort()
			return
		}
		if merchant == nil {
			response.Error(c, apperror.Unauthenticated("invalid credentials"))
			c.Abort()
			return
		}

		c.Set(CtxMerchant, merchant)
		c.Next()
	}
}

// parseBasicAuth decodes an "Authorization: Basic ..." header into
// key_id/key_secret without relying on the presence of cookies.
func parseBasicAuth(header string) (keyID, keySecret string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// JWTAuth authenticates dashboard/admin requests:
// Authorization: Bearer <jwt>. On success it attaches the decoded claims
// (user id, email, role) to the request context.
func JWTAuth(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, apperror.Unauthenticated("missing bearer token"))
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, apperror.Unauthenticated("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated principal is not one of
// the allowed roles. Must run after JWTAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRole)
		role, ok := v.(domain.Role)
		if !exists || !ok {
			response.Error(c, apperror.Forbidden("role not resolved"))
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.Forbidden("insufficient role"))
		c.Abort()
	}
}

// UserID extracts the authenticated user id attached by JWTAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxUserID)
	id, ok := v.(uuid.UUID)
	return id, exists && ok
}

// Merchant extracts the merchant principal attached by BasicAuth.
func Merchant(c *gin.Context) (*domain.Merchant, bool) {
	v, exists := c.Get(CtxMerchant)
	m, ok := v.(*domain.Merchant)
	return m, exists && ok
}

// RequestID attaches a correlation id to every request: the inbound
// X-Request-ID header if present, otherwise a freshly generated UUID. It is
// echoed back on the response and read by pkg/response for the JSON
// envelope.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs every HTTP request with its correlation id, status,
// and latency.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", response.RequestID(c)).
			Msg("http request")
	}
}

// Recovery is a panic recovery middleware that never leaks internals.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.Internal(nil))
			}
		}()
		c.Next()
	}
}
