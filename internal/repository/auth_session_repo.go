package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
)

// AuthSessionRepository is the data access interface for server-side HTTP
// sessions. Expiry is checked by the caller; expired rows are deleted when
// encountered rather than by a background sweep.
type AuthSessionRepository interface {
	Create(ctx context.Context, sess *model.AuthSession) error
	GetByToken(ctx context.Context, token string) (*model.AuthSession, error)
	Delete(ctx context.Context, token string) error
	ListTokensByInstructor(ctx context.Context, instructorID string) ([]string, error)
	DeleteByInstructor(ctx context.Context, instructorID string) error
}

// authSessionRepo is the GORM implementation of AuthSessionRepository.
type authSessionRepo struct {
	db *gorm.DB
}

// NewAuthSessionRepo creates an AuthSessionRepository.
func NewAuthSessionRepo(db *gorm.DB) AuthSessionRepository {
	return &authSessionRepo{db: db}
}

func (r *authSessionRepo) Create(ctx context.Context, sess *model.AuthSession) error {
	return r.db.WithContext(ctx).Create(sess).Error
}

func (r *authSessionRepo) GetByToken(ctx context.Context, token string) (*model.AuthSession, error) {
	var sess model.AuthSession
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Instructor.Assignments").
		Where("token = ?", token).
		First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *authSessionRepo) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.AuthSession{}).Error
}

func (r *authSessionRepo) ListTokensByInstructor(ctx context.Context, instructorID string) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&model.AuthSession{}).
		Where("instructor_id = ?", instructorID).
		Pluck("token", &tokens).Error
	return tokens, err
}

func (r *authSessionRepo) DeleteByInstructor(ctx context.Context, instructorID string) error {
	return r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Delete(&model.AuthSession{}).Error
}
