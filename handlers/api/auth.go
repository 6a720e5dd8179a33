package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"vmail/utils"
)

// Claims are the token claims issued by the identity provider: the subject
// is the stable user id, email the user's address.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer credential on every request and puts
// the authenticated user into request locals. Tokens are short-lived;
// there is no refresh logic here, an expired token is simply rejected.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.UnauthorizedError("Missing bearer token", nil)
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.UnauthorizedError("Invalid token", err)
		}
		if claims.Subject == "" {
			return utils.UnauthorizedError("Token missing subject", nil)
		}

		c.Locals("userID", claims.Subject)
		c.Locals("email", claims.Email)

		return c.Next()
	}
}

// SignToken mints a short-lived bearer token. In production tokens come
// from the identity provider; this is used by tooling and tests.
func SignToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// requireUser extracts the authenticated user id set by AuthMiddleware.
func requireUser(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return "", utils.UnauthorizedError("User not authenticated", nil)
	}
	return userID, nil
}

func userEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("email").(string)
	return email
}
