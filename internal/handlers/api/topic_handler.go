package api

import (
	"errors"

	"github.com/agicotech/ForumApp/internal/forum"
	"github.com/agicotech/ForumApp/internal/middlewares"
	"github.com/gofiber/fiber/v2"
)

type TopicHandler struct {
	forumService ForumService
}

func (h *TopicHandler) GetTopics(c *fiber.Ctx) error {
	topics, err := h.forumService.ListTopics(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}

	response := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		response = append(response, newTopicResponse(topic))
	}
	return c.JSON(response)
}

func (h *TopicHandler) GetTopic(c *fiber.Ctx) error {
	topicID, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid topic id")
	}

	topic, err := h.forumService.GetTopic(c.UserContext(), topicID)
	if errors.Is(err, forum.ErrTopicNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Topic not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(newTopicResponse(topic))
}

func (h *TopicHandler) PostTopic(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	var req CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if fieldErrors := validateFields(map[string]error{
		"title":       validateTopicTitle(req.Title),
		"description": validateTopicDescription(req.Description),
	}); fieldErrors != nil {
		return renderValidationError(c, fieldErrors)
	}

	topic, err := h.forumService.CreateTopic(c.UserContext(), claims.UserID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newTopicResponse(topic))
}

func (h *TopicHandler) DeleteTopic(c *fiber.Ctx) error {
	topicID, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid topic id")
	}

	err = h.forumService.DeleteTopic(c.UserContext(), topicID)
	if errors.Is(err, forum.ErrTopicNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Topic not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Topic deleted successfully"})
}

func NewTopicHandler(forumService ForumService) *TopicHandler {
	return &TopicHandler{
		forumService: forumService,
	}
}
