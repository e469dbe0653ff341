package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
)

var (
	ErrUserNotFound     = errors.New("account not found")
	ErrUserNotPending   = errors.New("account is not awaiting approval")
	ErrUnknownGroup     = errors.New("unknown group")
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")
)

// UserService is the admin-side account management.
type UserService interface {
	List(ctx context.Context) (*dto.UsersResponse, error)
	ListPending(ctx context.Context) (*dto.UsersResponse, error)
	Approve(ctx context.Context, id string, req *dto.ApproveUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ToggleActive(ctx context.Context, id, callerID string) (*dto.ToggleActiveResponse, error)
}

type userService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewUserService creates a UserService instance.
func NewUserService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) UserService {
	return &userService{repo: repo, rdb: rdb, logger: logger}
}

func (s *userService) List(ctx context.Context) (*dto.UsersResponse, error) {
	instructors, err := s.repo.Instructor.List(ctx)
	if err != nil {
		s.logger.Error("listing accounts failed", zap.Error(err))
		return nil, err
	}
	return s.usersResponse(instructors), nil
}

func (s *userService) ListPending(ctx context.Context) (*dto.UsersResponse, error) {
	instructors, err := s.repo.Instructor.ListByStatus(ctx, model.AccountPending)
	if err != nil {
		s.logger.Error("listing pending accounts failed", zap.Error(err))
		return nil, err
	}
	return s.usersResponse(instructors), nil
}

func (s *userService) Approve(ctx context.Context, id string, req *dto.ApproveUserRequest) (*dto.UserResponse, error) {
	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.AccountPending {
		return nil, ErrUserNotPending
	}

	role := model.RoleInstructor
	if req.Role != nil {
		role = *req.Role
	}
	if err := s.checkGroupsExist(ctx, req.GroupIDs); err != nil {
		return nil, err
	}

	inst.Status = model.AccountActive
	inst.Role = role
	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		s.logger.Error("approving account failed", zap.Error(err))
		return nil, err
	}
	if err := s.repo.Instructor.ReplaceAssignments(ctx, id, req.GroupIDs); err != nil {
		s.logger.Error("assigning groups failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("account approved",
		zap.String("instructor_id", id),
		zap.String("role", role),
		zap.Strings("group_ids", req.GroupIDs))

	return s.reload(ctx, id)
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		inst.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		inst.LastName = *req.LastName
	}
	if req.Phone != nil {
		inst.Phone = *req.Phone
	}
	if req.Role != nil {
		inst.Role = *req.Role
	}

	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		s.logger.Error("updating account failed", zap.Error(err))
		return nil, err
	}

	if req.GroupIDs != nil {
		if err := s.checkGroupsExist(ctx, *req.GroupIDs); err != nil {
			return nil, err
		}
		if err := s.repo.Instructor.ReplaceAssignments(ctx, id, *req.GroupIDs); err != nil {
			s.logger.Error("replacing group assignments failed", zap.Error(err))
			return nil, err
		}
	}

	// Role or allow-list changes must not survive in cached sessions.
	if req.Role != nil || req.GroupIDs != nil {
		s.revokeSessions(ctx, id)
	}

	return s.reload(ctx, id)
}

// ToggleActive flips an account between active and inactive. Deactivation
// revokes every session so the account is locked out immediately.
func (s *userService) ToggleActive(ctx context.Context, id, callerID string) (*dto.ToggleActiveResponse, error) {
	if id == callerID {
		return nil, ErrSelfDeactivation
	}

	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	switch inst.Status {
	case model.AccountActive:
		inst.Status = model.AccountInactive
	case model.AccountInactive:
		inst.Status = model.AccountActive
	default:
		return nil, ErrUserNotPending
	}

	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		s.logger.Error("toggling account failed", zap.Error(err))
		return nil, err
	}

	if inst.Status == model.AccountInactive {
		s.revokeSessions(ctx, id)
	}

	s.logger.Info("account toggled",
		zap.String("instructor_id", id),
		zap.String("status", inst.Status))

	return &dto.ToggleActiveResponse{ID: inst.ID, Status: inst.Status}, nil
}

// ── helpers ──

func (s *userService) getInstructor(ctx context.Context, id string) (*model.Instructor, error) {
	inst, err := s.repo.Instructor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("account lookup failed", zap.Error(err))
		return nil, err
	}
	return inst, nil
}

func (s *userService) checkGroupsExist(ctx context.Context, groupIDs []string) error {
	for _, gid := range groupIDs {
		if _, err := s.repo.GroupConfig.GetByID(ctx, gid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownGroup, gid)
			}
			return err
		}
	}
	return nil
}

func (s *userService) reload(ctx context.Context, id string) (*dto.UserResponse, error) {
	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(inst)
	return &resp, nil
}

func (s *userService) revokeSessions(ctx context.Context, instructorID string) {
	tokens, err := s.repo.AuthSession.ListTokensByInstructor(ctx, instructorID)
	if err != nil {
		s.logger.Warn("listing sessions for revocation failed", zap.Error(err))
	} else if s.rdb != nil {
		for _, t := range tokens {
			if err := s.rdb.DeleteSession(ctx, t); err != nil {
				s.logger.Warn("session cache delete failed", zap.Error(err))
			}
		}
	}
	if err := s.repo.AuthSession.DeleteByInstructor(ctx, instructorID); err != nil {
		s.logger.Warn("revoking sessions failed", zap.Error(err))
	}
}

func (s *userService) usersResponse(instructors []model.Instructor) *dto.UsersResponse {
	users := make([]dto.UserResponse, 0, len(instructors))
	for i := range instructors {
		users = append(users, dto.NewUserResponse(&instructors[i]))
	}
	return &dto.UsersResponse{Users: users}
}
