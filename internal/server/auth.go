package server

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// Verifier resolves a bearer token to a verified user identity. Token
// issuance and validation internals live outside this service.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// StaticVerifier maps fixed tokens to user ids. Intended for development
// and tests; production deployments plug in a real identity provider.
type StaticVerifier struct {
	tokens map[string]string
}

// NewStaticVerifier builds a verifier from "token:userid" pairs. Malformed
// pairs are skipped.
func NewStaticVerifier(pairs []string) *StaticVerifier {
	tokens := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		token, userID, ok := strings.Cut(pair, ":")
		if !ok || token == "" || userID == "" {
			continue
		}
		tokens[token] = userID
	}
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	userID, ok := v.tokens[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

const userIDContextKey = "userID"

// authMiddleware verifies the Authorization bearer token and stores the
// resolved user id on the request context.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return domain.ErrUnauthorized
			}

			userID, err := s.verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) string {
	if id, ok := c.Get(userIDContextKey).(string); ok {
		return id
	}
	return ""
}
