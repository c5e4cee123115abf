package serverutils

import (
	"context"
	"strings"

	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/pkg/tokenstore"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID = "user_id"
	LocalClaims = "claims"
)

type AccessTokenVerifier interface {
	ValidateAccessToken(token string) (*jwtauth.Claims, error)
}

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// Authenticate validates token and checks it against the denylist.
func Authenticate(ctx context.Context, verifier AccessTokenVerifier, denylist tokenstore.Denylist, token string) (*jwtauth.Claims, error) {
	if token == "" {
		return nil, apperror.Unauthorized("Missing token")
	}

	claims, err := verifier.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	if denylist != nil && claims.ID != "" {
		revoked, err := denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperror.Internal("failed to check token revocation", err)
		}
		if revoked {
			return nil, apperror.Unauthorized("Token has been revoked")
		}
	}
	return claims, nil
}

// NewJwtMiddleware stores the caller's id (string) and claims in Locals.
func NewJwtMiddleware(verifier AccessTokenVerifier, denylist tokenstore.Denylist) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		claims, err := Authenticate(ctx.UserContext(), verifier, denylist, BearerToken(ctx))
		if err != nil {
			return err
		}

		userId, err := jwtauth.UserIDFromClaims(claims)
		if err != nil {
			return apperror.Unauthorized("Invalid token claims")
		}

		ctx.Locals(LocalUserID, userId.String())
		ctx.Locals(LocalClaims, claims)
		return ctx.Next()
	}
}

func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals(LocalUserID).(string)
	if !ok {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Invalid user ID")
	}
	return id, nil
}

func CurrentClaims(ctx *fiber.Ctx) *jwtauth.Claims {
	claims, _ := ctx.Locals(LocalClaims).(*jwtauth.Claims)
	return claims
}
