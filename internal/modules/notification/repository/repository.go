package repository

import (
	"context"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StagedInsert is one row of an atomic batch. Key must be unique within the batch.
type StagedInsert struct {
	Key          string
	Notification *entity.Notification
}

// InsertError reports the staged insert that aborted a batch.
type InsertError struct {
	Key string
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("staged insert %s failed: %v", e.Key, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	// CreateBatch inserts every staged row in one transaction. Either all rows
	// are committed or none are; the failing row is reported as *InsertError.
	CreateBatch(ctx context.Context, batch []StagedInsert) error
	FindUnreadByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Notification, error)
	MarkAsRead(ctx context.Context, notification *entity.Notification) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) CreateBatch(ctx context.Context, batch []StagedInsert) error {
	if len(batch) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(batch))
	for _, staged := range batch {
		if _, dup := seen[staged.Key]; dup {
			return &InsertError{Key: staged.Key, Err: fmt.Errorf("duplicate key in batch")}
		}
		seen[staged.Key] = struct{}{}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, staged := range batch {
			if err := tx.Create(staged.Notification).Error; err != nil {
				return &InsertError{Key: staged.Key, Err: err}
			}
		}
		return nil
	})
}

func (r *notificationRepository) FindUnreadByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at ASC, id ASC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Notification, error) {
	var notification entity.Notification
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, notification *entity.Notification) error {
	result := r.db.WithContext(ctx).
		Model(notification).
		Where("user_id = ?", notification.UserID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&count).Error
	return count, err
}
