package checkins

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/session"
)

type CheckInHandler struct {
	service *CheckInService
}

func NewCheckInHandler(service *CheckInService) *CheckInHandler {
	return &CheckInHandler{service: service}
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

// fail maps service errors to responses. fallback is the message for
// anything unexpected; the real error is only logged.
func fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrInvalidCheckIn):
		return badRequest(c, err.Error())
	case errors.Is(err, ErrUnknownUser):
		return unauthorized(c)
	case errors.Is(err, ErrCheckInExists), errors.Is(err, ErrCheckInLocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, ErrCheckInNotFound), errors.Is(err, ErrNoPositiveMemories):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error(fallback, "action", "checkins", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func (h *CheckInHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return fail(c, err, "Failed to create check-in")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CheckInHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid check-in ID")
	}

	var req UpdateCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ci, err := h.service.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return fail(c, err, "Failed to update check-in")
	}

	return c.JSON(ci)
}

func (h *CheckInHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid check-in ID")
	}

	ci, err := h.service.GetByID(c.UserContext(), userID, id)
	if err != nil {
		return fail(c, err, "Failed to fetch check-in")
	}

	return c.JSON(ci)
}

func (h *CheckInHandler) GetByDate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	day, err := calendar.ParseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "Invalid date, expected YYYY-MM-DD")
	}

	ci, err := h.service.GetByDate(c.UserContext(), userID, day)
	if err != nil {
		return fail(c, err, "Failed to fetch check-in")
	}

	return c.JSON(ci)
}

func (h *CheckInHandler) Today(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ci, err := h.service.GetToday(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch check-in")
	}

	return c.JSON(ci)
}

func (h *CheckInHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch check-ins")
	}

	return c.JSON(CheckInListResponse{CheckIns: list, Total: len(list)})
}

func (h *CheckInHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	d, err := h.service.Dashboard(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to build dashboard")
	}

	return c.JSON(d)
}

func (h *CheckInHandler) Reflections(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	refs, err := h.service.SupportReflections(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch reflections")
	}

	return c.JSON(ReflectionsResponse{Reflections: refs})
}

func (h *CheckInHandler) Perspective(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	p, err := h.service.PerspectiveShift(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to fetch perspective")
	}

	return c.JSON(p)
}

func (h *CheckInHandler) Encouragement(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.service.Encouragement(c.UserContext(), userID)
	if err != nil {
		return fail(c, err, "Failed to generate encouragement")
	}

	return c.JSON(resp)
}

func (h *CheckInHandler) Memories(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var f MemoryFilter
	if raw := c.Query("mood"); raw != "" {
		m, err := mood.ParseMood(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		f.Mood = &m
	}
	f.Query = c.Query("q")

	list, err := h.service.Memories(c.UserContext(), userID, f)
	if err != nil {
		return fail(c, err, "Failed to fetch memories")
	}

	return c.JSON(CheckInListResponse{CheckIns: list, Total: len(list)})
}
