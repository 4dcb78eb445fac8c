package api

import (
	"github.com/agicotech/ForumApp/internal/audit"
	"github.com/agicotech/ForumApp/model"
	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	auditRepo audit.AuditLogRepository
}

func (h *AuditHandler) GetAll(c *fiber.Ctx) error {
	entries, err := h.auditRepo.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(newAuditLogListResponse(entries))
}

func (h *AuditHandler) GetByUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}

	entries, err := h.auditRepo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(newAuditLogListResponse(entries))
}

func newAuditLogListResponse(entries []*model.AuditLog) []AuditLogResponse {
	response := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, newAuditLogResponse(entry))
	}
	return response
}

func NewAuditHandler(auditRepo audit.AuditLogRepository) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
	}
}
