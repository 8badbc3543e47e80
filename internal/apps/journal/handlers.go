package journal

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/session"
)

type JournalHandler struct {
	service *JournalService
}

func NewJournalHandler(service *JournalService) *JournalHandler {
	return &JournalHandler{service: service}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrInvalidEntry), errors.Is(err, ErrInvalidSearch):
		return badRequest(c, err.Error())
	case errors.Is(err, ErrUnknownUser):
		return unauthorized(c)
	case errors.Is(err, ErrEntryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error(fallback, "action", "journal", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func pageParams(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	return limit, offset
}

func (h *JournalHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return fail(c, err, "Failed to create entry")
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *JournalHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit, offset := pageParams(c)
	resp, err := h.service.List(c.UserContext(), userID, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch entries")
	}

	return c.JSON(resp)
}

func (h *JournalHandler) Search(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit, offset := pageParams(c)
	resp, err := h.service.Search(c.UserContext(), userID, c.Query("q"), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to search entries")
	}

	return c.JSON(resp)
}

func (h *JournalHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid entry ID")
	}

	entry, err := h.service.Get(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, err, "Failed to fetch entry")
	}

	return c.JSON(entry)
}

func (h *JournalHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid entry ID")
	}

	var req UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.service.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return fail(c, err, "Failed to update entry")
	}

	return c.JSON(entry)
}

func (h *JournalHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid entry ID")
	}

	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return fail(c, err, "Failed to delete entry")
	}

	return c.JSON(DeleteEntryResponse{Message: "Entry deleted successfully"})
}

func (h *JournalHandler) Summary(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid entry ID")
	}

	resp, err := h.service.Summarize(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, err, "Failed to summarize entry")
	}

	return c.JSON(resp)
}
