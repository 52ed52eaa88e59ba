package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tally-server/src/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SupabaseClaims are the claims of a Supabase access token that we rely on.
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey int

const (
	userIDKey ctxKey = iota
	emailKey
	roleKey
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// ParseTokenFromRequest extracts and validates the bearer token, returning its claims.
func ParseTokenFromRequest(r *http.Request, secret []byte, audience string) (*SupabaseClaims, error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return nil, errMissingToken
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	var claims SupabaseClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	return &claims, nil
}

// JWTAuthMiddleware rejects requests without a valid Supabase access token and
// puts the caller's user id in the request context.
func JWTAuthMiddleware(secret, audience string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())
			claims, err := ParseTokenFromRequest(r, key, audience)
			if err != nil {
				logger.Warn("rejected request", logging.FieldError, err)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				logger.Warn("token subject is not a user id", "sub", claims.Subject)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			ctx = logging.NewContext(ctx, logger.With(logging.FieldUserID, userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id set by JWTAuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// RequireRole only lets through callers whose token carries the given role.
// It must run after JWTAuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				logging.FromContext(r.Context()).Warn("forbidden", "required_role", role)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
