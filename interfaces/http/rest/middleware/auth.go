package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"versegraph/pkg/auth"
	"versegraph/pkg/common"
	pkgerrors "versegraph/pkg/errors"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// rateLimitRetryAfter is advertised to callers that exceed their budget
const rateLimitRetryAfter = time.Minute

// Authenticate validates the JWT in the Authorization header and stores the
// caller in the request context
func Authenticate(validator TokenValidator, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, r, errs, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Token validation failed",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("ip", getClientIP(r)),
				)
				if errors.Is(err, auth.ErrExpiredToken) {
					respondUnauthorized(w, r, errs, "Token has expired")
					return
				}
				respondUnauthorized(w, r, errs, "Invalid authentication token")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
			ctx = common.WithUserID(ctx, claims.UserID)
			ctx = common.WithRequestID(ctx, chimiddleware.GetReqID(r.Context()))
			if holder := userHolderFrom(ctx); holder != nil {
				holder.userID = claims.UserID
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects requests once the caller exceeds the limiter's budget.
// Limiter errors are logged and the request is let through.
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)
			if user, err := auth.GetUserFromContext(r.Context()); err == nil {
				key = user.UserID
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter error", zap.String("key", key), zap.Error(err))
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError(rateLimitRetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the JWT token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Browsers cannot set headers on WebSocket upgrades
	return r.URL.Query().Get("token")
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondUnauthorized(w http.ResponseWriter, r *http.Request, errs *pkgerrors.ErrorHandler, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="versegraph"`)
	errs.Handle(w, r, pkgerrors.NewUnauthorizedError(message))
}
