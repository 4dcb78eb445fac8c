package forum

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/agicotech/ForumApp/internal/store"
	"github.com/agicotech/ForumApp/model"
	"github.com/agicotech/ForumApp/params"
	"gorm.io/gorm"
)

// ForumService implements topic and message operations. The unfiltered topic
// listing is cached with a short TTL and invalidated on every topic mutation;
// everything else reads through to the store.
type ForumService struct {
	topicRepo   TopicRepository
	messageRepo MessageRepository
	cache       store.Storage // optional, nil disables caching
}

func (s *ForumService) ListTopics(ctx context.Context, search string) ([]*TopicWithCount, error) {
	if search == "" && s.cache != nil {
		var cached []*TopicWithCount
		if err := s.cache.Get(ctx, params.TopicListCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	topics, err := s.topicRepo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	if search == "" && s.cache != nil {
		if err := s.cache.Set(ctx, params.TopicListCacheKey, topics, params.TopicListCacheTTL); err != nil {
			slog.Warn("Failed to cache topic listing", "error", err)
		}
	}
	return topics, nil
}

func (s *ForumService) GetTopic(ctx context.Context, topicID uint) (*TopicWithCount, error) {
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTopicNotFound
	}
	return topic, err
}

func (s *ForumService) CreateTopic(ctx context.Context, authorID uint, title string, description string) (*TopicWithCount, error) {
	topic := model.Topic{
		Title:       title,
		Description: description,
		AuthorID:    authorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.topicRepo.Create(ctx, &topic); err != nil {
		return nil, err
	}
	s.invalidateTopicCache(ctx)
	return s.GetTopic(ctx, topic.ID)
}

func (s *ForumService) DeleteTopic(ctx context.Context, topicID uint) error {
	deleted, err := s.topicRepo.Delete(ctx, topicID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrTopicNotFound
	}
	s.invalidateTopicCache(ctx)
	return nil
}

func (s *ForumService) ListMessages(ctx context.Context, topicID uint, search string) ([]*model.Message, error) {
	return s.messageRepo.ListByTopic(ctx, topicID, search)
}

func (s *ForumService) GetMessage(ctx context.Context, messageID uint) (*model.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	return message, err
}

func (s *ForumService) CreateMessage(ctx context.Context, authorID uint, topicID uint, text string) (*model.Message, error) {
	if _, err := s.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}

	message := model.Message{
		TopicID:   topicID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, &message); err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, message.ID)
}

// UpdateMessage replaces the message text. Only the author may edit their
// own message; admins may edit any.
func (s *ForumService) UpdateMessage(ctx context.Context, actorID uint, actorRole model.UserRole, messageID uint, text string) (*model.Message, error) {
	message, err := s.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.AuthorID != actorID && actorRole != model.RoleAdmin {
		return nil, ErrNotMessageAuthor
	}
	if err := s.messageRepo.UpdateText(ctx, messageID, text); err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, messageID)
}

func (s *ForumService) DeleteMessage(ctx context.Context, actorID uint, actorRole model.UserRole, messageID uint) error {
	message, err := s.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.AuthorID != actorID && actorRole != model.RoleAdmin {
		return ErrNotMessageAuthor
	}
	return s.messageRepo.Delete(ctx, messageID)
}

func (s *ForumService) invalidateTopicCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, params.TopicListCacheKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Failed to invalidate topic listing cache", "error", err)
	}
}

func NewForumService(topicRepo TopicRepository, messageRepo MessageRepository, cache store.Storage) *ForumService {
	return &ForumService{
		topicRepo:   topicRepo,
		messageRepo: messageRepo,
		cache:       cache,
	}
}
