package audit

import (
	"context"

	"github.com/agicotech/ForumApp/model"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListAll(ctx context.Context) ([]*model.AuditLog, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func (r *auditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) ListAll(ctx context.Context) ([]*model.AuditLog, error) {
	var entries []*model.AuditLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("timestamp desc").
		Find(&entries).Error
	return entries, err
}

func (r *auditLogRepository) ListByUser(ctx context.Context, userID uint) ([]*model.AuditLog, error) {
	var entries []*model.AuditLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Find(&entries).Error
	return entries, err
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db}
}
