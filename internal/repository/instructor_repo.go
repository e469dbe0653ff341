package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
)

// InstructorRepository is the data access interface for staff accounts.
type InstructorRepository interface {
	Create(ctx context.Context, inst *model.Instructor) error
	GetByID(ctx context.Context, id string) (*model.Instructor, error)
	GetByUsername(ctx context.Context, username string) (*model.Instructor, error)
	GetByEmail(ctx context.Context, email string) (*model.Instructor, error)
	List(ctx context.Context) ([]model.Instructor, error)
	ListByStatus(ctx context.Context, status string) ([]model.Instructor, error)
	Update(ctx context.Context, inst *model.Instructor) error
	// ReplaceAssignments swaps the instructor's group allow-list for the
	// given set inside one transaction.
	ReplaceAssignments(ctx context.Context, instructorID string, groupIDs []string) error
}

// instructorRepo is the GORM implementation of InstructorRepository.
type instructorRepo struct {
	db *gorm.DB
}

// NewInstructorRepo creates an InstructorRepository.
func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) Create(ctx context.Context, inst *model.Instructor) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *instructorRepo) GetByID(ctx context.Context, id string) (*model.Instructor, error) {
	var inst model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("id = ?", id).
		First(&inst).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *instructorRepo) GetByUsername(ctx context.Context, username string) (*model.Instructor, error) {
	var inst model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("username = ?", username).
		First(&inst).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *instructorRepo) GetByEmail(ctx context.Context, email string) (*model.Instructor, error) {
	var inst model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("email = ?", email).
		First(&inst).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *instructorRepo) List(ctx context.Context) ([]model.Instructor, error) {
	var insts []model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Order("created_at DESC").
		Find(&insts).Error
	return insts, err
}

func (r *instructorRepo) ListByStatus(ctx context.Context, status string) ([]model.Instructor, error) {
	var insts []model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&insts).Error
	return insts, err
}

func (r *instructorRepo) Update(ctx context.Context, inst *model.Instructor) error {
	return r.db.WithContext(ctx).
		Omit("Assignments").
		Save(inst).Error
}

func (r *instructorRepo) ReplaceAssignments(ctx context.Context, instructorID string, groupIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("instructor_id = ?", instructorID).
			Delete(&model.GroupAssignment{}).Error; err != nil {
			return err
		}
		if len(groupIDs) == 0 {
			return nil
		}
		rows := make([]model.GroupAssignment, 0, len(groupIDs))
		for _, gid := range groupIDs {
			rows = append(rows, model.GroupAssignment{
				InstructorID: instructorID,
				GroupID:      gid,
			})
		}
		return tx.Create(&rows).Error
	})
}
