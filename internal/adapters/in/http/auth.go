package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const callerContextKey = "campusdash.caller"

// WebhookKeyHeader carries the static key of the payment processor callback.
const WebhookKeyHeader = "X-Webhook-Key"

// CallerID returns the identity placed on the context by BearerAuth.
func CallerID(ctx echo.Context) (kernel.UUID, error) {
	id, ok := ctx.Get(callerContextKey).(kernel.UUID)
	if !ok {
		return kernel.UUID{}, fmt.Errorf("%w: no verified caller", errs.ErrUnauthenticated)
	}
	return id, nil
}

// BearerAuth verifies an HS256 token that carries an expiry and stores its subject as
// the caller id.
func BearerAuth(secret []byte) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				return fmt.Errorf("%w: missing bearer token", errs.ErrUnauthenticated)
			}

			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				return fmt.Errorf("%w: %w", errs.ErrUnauthenticated, err)
			}
			if claims.ExpiresAt == nil {
				return fmt.Errorf("%w: token has no expiry", errs.ErrUnauthenticated)
			}

			callerID, err := kernel.UUIDFromString(claims.Subject)
			if err != nil {
				return fmt.Errorf("%w: subject is not a user id", errs.ErrUnauthenticated)
			}

			ctx.Set(callerContextKey, callerID)
			return next(ctx)
		}
	}
}

// IssueToken signs a token for the given user. Used by tooling and tests; login
// itself lives outside this service.
func IssueToken(secret []byte, userID kernel.UUID, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// WebhookKeyAuth accepts only requests carrying the configured static key.
func WebhookKeyAuth(key string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + WebhookKeyHeader,
		Validator: func(got string, _ echo.Context) (bool, error) {
			return key != "" && subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
		},
		ErrorHandler: func(err error, _ echo.Context) error {
			return fmt.Errorf("%w: %v", errs.ErrUnauthenticated, err)
		},
	})
}
