package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no authenticated session")

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoSession
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrNoSession
	}

	id, err := uuid.Parse(sub)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrNoSession
	}
	return id, nil
}
