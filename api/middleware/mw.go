package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/groupmail/groupmail-services/internal/authn"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string
type tokenKey string

const ClaimsKey contextKey = "claims"
const TokenKey tokenKey = "token"

// JWTMiddleware parses the JWT token and adds claims to the request context.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "JWTMiddleware").Logger()

			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Msg("authorization header missing")
				http.Error(w, "authorization header missing",
					http.StatusUnauthorized)
				return
			}

			ctx, err := withClaims(r.Context(), authHeader)
			if err != nil {
				logger.Error().Err(err).Msg("invalid bearer jwt token")
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// OptionalJWTMiddleware adds claims to the request context when a valid
// bearer token is present and lets anonymous requests through.
func OptionalJWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := withClaims(r.Context(), authHeader)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("invalid bearer jwt token")
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

func withClaims(ctx context.Context, authHeader string) (context.Context, error) {
	// Check the Authorization header format
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ctx, errInvalidFormat
	}

	// Parse the token for JWT claims
	claims, err := authn.ParseClaims(token)
	if err != nil {
		return ctx, errInvalidToken
	}

	// Add the token and claims to the context
	ctx = context.WithValue(ctx, TokenKey, token)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx, nil
}

var (
	errInvalidFormat = errors.New("invalid token format")
	errInvalidToken  = errors.New("invalid bearer jwt token")
)

// ClaimsFrom returns the claims placed in the context by the JWT
// middleware.
func ClaimsFrom(ctx context.Context) (authn.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(authn.Claims)
	return claims, ok
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
