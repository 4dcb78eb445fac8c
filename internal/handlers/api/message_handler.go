package api

import (
	"errors"

	"github.com/agicotech/ForumApp/internal/forum"
	"github.com/agicotech/ForumApp/internal/middlewares"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	forumService ForumService
}

func (h *MessageHandler) GetByTopic(c *fiber.Ctx) error {
	topicID, err := parseIDParam(c, "topicId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid topic id")
	}

	messages, err := h.forumService.ListMessages(c.UserContext(), topicID, c.Query("search"))
	if err != nil {
		return err
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		response = append(response, newMessageResponse(message))
	}
	return c.JSON(response)
}

func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message id")
	}

	message, err := h.forumService.GetMessage(c.UserContext(), messageID)
	if errors.Is(err, forum.ErrMessageNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Message not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(newMessageResponse(message))
}

func (h *MessageHandler) PostMessage(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if fieldErrors := validateFields(map[string]error{
		"text": validateMessageText(req.Text),
	}); fieldErrors != nil {
		return renderValidationError(c, fieldErrors)
	}

	message, err := h.forumService.CreateMessage(c.UserContext(), claims.UserID, req.TopicID, req.Text)
	if errors.Is(err, forum.ErrTopicNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Topic not found")
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newMessageResponse(message))
}

func (h *MessageHandler) PutMessage(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message id")
	}

	var req UpdateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if fieldErrors := validateFields(map[string]error{
		"text": validateMessageText(req.Text),
	}); fieldErrors != nil {
		return renderValidationError(c, fieldErrors)
	}

	message, err := h.forumService.UpdateMessage(c.UserContext(), claims.UserID, claims.Role, messageID, req.Text)
	switch {
	case errors.Is(err, forum.ErrMessageNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Message not found")
	case errors.Is(err, forum.ErrNotMessageAuthor):
		return fiber.NewError(fiber.StatusForbidden, "You can only edit your own messages")
	case err != nil:
		return err
	}
	return c.JSON(newMessageResponse(message))
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message id")
	}

	err = h.forumService.DeleteMessage(c.UserContext(), claims.UserID, claims.Role, messageID)
	switch {
	case errors.Is(err, forum.ErrMessageNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Message not found")
	case errors.Is(err, forum.ErrNotMessageAuthor):
		return fiber.NewError(fiber.StatusForbidden, "You can only delete your own messages")
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"message": "Message deleted successfully"})
}

func NewMessageHandler(forumService ForumService) *MessageHandler {
	return &MessageHandler{
		forumService: forumService,
	}
}
