package forum

import (
	"context"
	"time"

	"github.com/agicotech/ForumApp/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	ListByTopic(ctx context.Context, topicID uint, search string) ([]*model.Message, error)
	GetByID(ctx context.Context, messageID uint) (*model.Message, error)
	Create(ctx context.Context, message *model.Message) error
	UpdateText(ctx context.Context, messageID uint, text string) error
	Delete(ctx context.Context, messageID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) ListByTopic(ctx context.Context, topicID uint, search string) ([]*model.Message, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("topic_id = ?", topicID)
	if search != "" {
		query = query.Where("text LIKE ?", "%"+search+"%")
	}
	var messages []*model.Message
	err := query.Order("created_at asc").Find(&messages).Error
	return messages, err
}

func (r *messageRepository) GetByID(ctx context.Context, messageID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&message, "id = ?", messageID).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) UpdateText(ctx context.Context, messageID uint, text string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{"text": text, "updated_at": &now}).Error
}

func (r *messageRepository) Delete(ctx context.Context, messageID uint) error {
	return r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&model.Message{}).Error
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db}
}
