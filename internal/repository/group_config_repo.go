package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
)

// GroupConfigRepository is the data access interface for per-group
// spreadsheet configuration. Deletion is soft: groups are deactivated and
// can be restored, never removed.
type GroupConfigRepository interface {
	Create(ctx context.Context, group *model.GroupConfig) error
	GetByID(ctx context.Context, groupID string) (*model.GroupConfig, error)
	List(ctx context.Context) ([]model.GroupConfig, error)
	ListAll(ctx context.Context) ([]model.GroupConfig, error)
	Update(ctx context.Context, group *model.GroupConfig) error
	SetActive(ctx context.Context, groupID string, active bool) error
}

// groupConfigRepo is the GORM implementation of GroupConfigRepository.
type groupConfigRepo struct {
	db *gorm.DB
}

// NewGroupConfigRepo creates a GroupConfigRepository.
func NewGroupConfigRepo(db *gorm.DB) GroupConfigRepository {
	return &groupConfigRepo{db: db}
}

func (r *groupConfigRepo) Create(ctx context.Context, group *model.GroupConfig) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupConfigRepo) GetByID(ctx context.Context, groupID string) (*model.GroupConfig, error) {
	var group model.GroupConfig
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupConfigRepo) List(ctx context.Context) ([]model.GroupConfig, error) {
	var groups []model.GroupConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupConfigRepo) ListAll(ctx context.Context) ([]model.GroupConfig, error) {
	var groups []model.GroupConfig
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupConfigRepo) Update(ctx context.Context, group *model.GroupConfig) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupConfigRepo) SetActive(ctx context.Context, groupID string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.GroupConfig{}).
		Where("group_id = ?", groupID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
