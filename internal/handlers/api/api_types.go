package api

import (
	"context"
	"time"

	"github.com/agicotech/ForumApp/internal/forum"
	"github.com/agicotech/ForumApp/internal/users"
	"github.com/agicotech/ForumApp/model"
)

type UserService interface {
	Register(ctx context.Context, opts users.RegisterOptions) (*model.User, error)
	Login(ctx context.Context, username string, password string) (*model.User, string, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword string, newPassword string) error
	PromoteToAdmin(ctx context.Context, targetID uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

type ForumService interface {
	ListTopics(ctx context.Context, search string) ([]*forum.TopicWithCount, error)
	GetTopic(ctx context.Context, topicID uint) (*forum.TopicWithCount, error)
	CreateTopic(ctx context.Context, authorID uint, title string, description string) (*forum.TopicWithCount, error)
	DeleteTopic(ctx context.Context, topicID uint) error
	ListMessages(ctx context.Context, topicID uint, search string) ([]*model.Message, error)
	GetMessage(ctx context.Context, messageID uint) (*model.Message, error)
	CreateMessage(ctx context.Context, authorID uint, topicID uint, text string) (*model.Message, error)
	UpdateMessage(ctx context.Context, actorID uint, actorRole model.UserRole, messageID uint, text string) (*model.Message, error)
	DeleteMessage(ctx context.Context, actorID uint, actorRole model.UserRole, messageID uint) error
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type CreateTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateMessageRequest struct {
	TopicID uint   `json:"topicId"`
	Text    string `json:"text"`
}

type UpdateMessageRequest struct {
	Text string `json:"text"`
}

// UserInfoResponse never includes the password hash; the model is not
// serialized outward anywhere.
type UserInfoResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type UserDetailResponse struct {
	UserInfoResponse
	CreatedAt time.Time `json:"createdAt"`
}

type AuthorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type TopicResponse struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Author       AuthorResponse `json:"author"`
	MessageCount int64          `json:"messageCount"`
}

type MessageResponse struct {
	ID        uint           `json:"id"`
	TopicID   uint           `json:"topicId"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
	Author    AuthorResponse `json:"author"`
}

type AuditLogResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType,omitempty"`
	EntityID   *uint     `json:"entityId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details,omitempty"`
}

func newUserInfoResponse(user *model.User) UserInfoResponse {
	return UserInfoResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role.String(),
	}
}

func newTopicResponse(topic *forum.TopicWithCount) TopicResponse {
	return TopicResponse{
		ID:           topic.ID,
		Title:        topic.Title,
		Description:  topic.Description,
		CreatedAt:    topic.CreatedAt,
		Author:       AuthorResponse{ID: topic.Author.ID, Username: topic.Author.Username},
		MessageCount: topic.MessageCount,
	}
}

func newMessageResponse(message *model.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		TopicID:   message.TopicID,
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
		Author:    AuthorResponse{ID: message.Author.ID, Username: message.Author.Username},
	}
}

func newAuditLogResponse(entry *model.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Username:   entry.User.Username,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Timestamp:  entry.Timestamp,
		Details:    entry.Details,
	}
}
