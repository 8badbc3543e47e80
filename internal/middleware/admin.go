package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
)

// AdminRequired lets through users listed in ADMIN_EMAILS or whose stored
// role is "admin". It must run after JWTProtected.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		email, _ := claims["email"].(string)
		if email != "" && contains(adminEmails, strings.ToLower(email)) {
			return c.Next()
		}

		sub, _ := claims["sub"].(string)
		if userID, err := uuid.Parse(sub); err == nil {
			var user models.User
			if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err == nil && user.Role == models.RoleAdmin {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
