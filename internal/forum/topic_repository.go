package forum

import (
	"context"

	"github.com/agicotech/ForumApp/model"
	"gorm.io/gorm"
)

// TopicWithCount is the read-side shape of a topic: the record with its
// author plus the number of messages in it.
type TopicWithCount struct {
	model.Topic
	MessageCount int64
}

type TopicRepository interface {
	List(ctx context.Context, search string) ([]*TopicWithCount, error)
	GetByID(ctx context.Context, topicID uint) (*TopicWithCount, error)
	Create(ctx context.Context, topic *model.Topic) error
	Delete(ctx context.Context, topicID uint) (int64, error)
}

type topicRepository struct {
	db *gorm.DB
}

func (r *topicRepository) List(ctx context.Context, search string) ([]*TopicWithCount, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Messages")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	var topics []*model.Topic
	if err := query.Order("created_at desc").Find(&topics).Error; err != nil {
		return nil, err
	}

	views := make([]*TopicWithCount, 0, len(topics))
	for _, topic := range topics {
		views = append(views, newTopicWithCount(topic))
	}
	return views, nil
}

func (r *topicRepository) GetByID(ctx context.Context, topicID uint) (*TopicWithCount, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Messages").
		First(&topic, "id = ?", topicID).Error
	if err != nil {
		return nil, err
	}
	return newTopicWithCount(&topic), nil
}

func (r *topicRepository) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

// Delete removes the topic and its messages in one transaction so a
// concurrent reader never observes orphaned messages.
func (r *topicRepository) Delete(ctx context.Context, topicID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", topicID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		ret := tx.Where("id = ?", topicID).Delete(&model.Topic{})
		deleted = ret.RowsAffected
		return ret.Error
	})
	return deleted, err
}

func newTopicWithCount(topic *model.Topic) *TopicWithCount {
	count := int64(len(topic.Messages))
	topic.Messages = nil // only the count leaves the repository
	return &TopicWithCount{Topic: *topic, MessageCount: count}
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db}
}
