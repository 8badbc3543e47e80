package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type SystemLogListResponse struct {
	Logs   []models.SystemLog `json:"logs"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// Logs pages through persisted error records, newest first. Optional
// filters: ?level=, ?action=, ?user_id=.
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	q := h.db.WithContext(c.UserContext()).Model(&models.SystemLog{})
	if level := c.Query("level"); level != "" {
		q = q.Where("level = ?", strings.ToUpper(level))
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if userID := c.Query("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return internalError(c, "admin_logs", err, "Failed to fetch logs")
	}

	logs := []models.SystemLog{}
	if err := q.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return internalError(c, "admin_logs", err, "Failed to fetch logs")
	}

	return c.JSON(SystemLogListResponse{Logs: logs, Total: total, Limit: limit, Offset: offset})
}
