package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/session"
)

type AuthHandler struct {
	authService  *services.AuthService
	oauthService *services.OAuthService
}

func NewAuthHandler(authService *services.AuthService, oauthService *services.OAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, oauthService: oauthService}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx, action string, err error, msg string) error {
	slog.Error(msg, "action", action, "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, msg)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return errorJSON(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, services.ErrInvalidRequest):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return internalError(c, "register", err, "Failed to register")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, err.Error())
		}
		return internalError(c, "login", err, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return errorJSON(c, fiber.StatusUnauthorized, err.Error())
		}
		return internalError(c, "refresh", err, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return internalError(c, "logout", err, "Failed to logout")
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.Profile(c.UserContext(), userID)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}

	return c.JSON(user)
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return errorJSON(c, fiber.StatusUnauthorized, "Incorrect password. Please try again.")
		case errors.Is(err, services.ErrUserNotFound):
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrPasswordRequired):
			return errorJSON(c, fiber.StatusBadRequest, "Password is required")
		}
		return internalError(c, "delete_account", err, "Failed to delete account")
	}

	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}

func (h *AuthHandler) GitHubURL(c *fiber.Ctx) error {
	resp, err := h.oauthService.AuthURL(c.UserContext())
	if err != nil {
		if errors.Is(err, services.ErrOAuthDisabled) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, "oauth_github", err, "Failed to start GitHub login")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) GitHubCallback(c *fiber.Ctx) error {
	if e := c.Query("error"); e != "" {
		return errorJSON(c, fiber.StatusUnauthorized, "GitHub login was cancelled")
	}

	profile, err := h.oauthService.Exchange(c.UserContext(), c.Query("state"), c.Query("code"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOAuthDisabled):
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInvalidState):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrOAuthExchange):
			slog.Warn("GitHub exchange failed", "action", "oauth_github_callback", "error", err)
			return errorJSON(c, fiber.StatusUnauthorized, services.ErrOAuthExchange.Error())
		}
		return internalError(c, "oauth_github_callback", err, "Failed to complete GitHub login")
	}

	resp, err := h.authService.GitHubLogin(c.UserContext(), profile)
	if err != nil {
		return internalError(c, "oauth_github_callback", err, "Failed to complete GitHub login")
	}

	return c.JSON(resp)
}
