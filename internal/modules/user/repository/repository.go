package repository

import (
	"context"

	"anoa.com/gradenotify/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
	// FindGroupByUserID returns gorm.ErrRecordNotFound when the user belongs to no group.
	FindGroupByUserID(ctx context.Context, userID uuid.UUID) (*entity.Group, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	var users []*entity.User
	roleIDs := r.db.Model(&entity.Role{}).Select("id").Where("name = ?", role)
	err := r.db.WithContext(ctx).
		Where("role_id IN (?)", roleIDs).
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) FindGroupByUserID(ctx context.Context, userID uuid.UUID) (*entity.Group, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Select("id", "group_id").Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	if user.GroupID == nil {
		return nil, gorm.ErrRecordNotFound
	}

	var group entity.Group
	if err := r.db.WithContext(ctx).Where("id = ?", *user.GroupID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}
