package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupExists       = errors.New("group id already exists")
	ErrGroupAccessDenied = errors.New("no access to this group")
)

// GroupService manages group configuration and answers two questions the
// rest of the domain keeps asking: which groups may this caller see, and
// which spreadsheet holds a group's data.
type GroupService interface {
	List(ctx context.Context, caller *dto.Caller) (*dto.GroupsResponse, error)
	ListAll(ctx context.Context) (*dto.GroupDetailsResponse, error)
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupDetailResponse, error)
	Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest) (*dto.GroupDetailResponse, error)
	Deactivate(ctx context.Context, groupID string) error
	Restore(ctx context.Context, groupID string) error

	// VisibleGroups returns the active groups the caller may work with.
	VisibleGroups(ctx context.Context, caller *dto.Caller) ([]model.GroupConfig, error)
	// ResolveSpreadsheet authorizes the caller for groupID and returns the
	// spreadsheet holding its data.
	ResolveSpreadsheet(ctx context.Context, caller *dto.Caller, groupID string) (string, error)
	// SpreadsheetFor returns the spreadsheet a group's data lives in,
	// falling back to the default document.
	SpreadsheetFor(g *model.GroupConfig) string

	// GroupsForReport resolves the report's group selection: the named
	// groups (inactive allowed, access checked) or every visible group.
	GroupsForReport(ctx context.Context, caller *dto.Caller, groupIDs []string) ([]model.GroupConfig, error)
}

type groupService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService creates a GroupService instance.
func NewGroupService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{cfg: cfg, repo: repo, logger: logger}
}

func (s *groupService) List(ctx context.Context, caller *dto.Caller) (*dto.GroupsResponse, error) {
	groups, err := s.VisibleGroups(ctx, caller)
	if err != nil {
		return nil, err
	}

	resp := &dto.GroupsResponse{Groups: make([]dto.GroupResponse, 0, len(groups))}
	for i := range groups {
		resp.Groups = append(resp.Groups, dto.NewGroupResponse(&groups[i]))
	}
	return resp, nil
}

func (s *groupService) ListAll(ctx context.Context) (*dto.GroupDetailsResponse, error) {
	groups, err := s.repo.GroupConfig.ListAll(ctx)
	if err != nil {
		s.logger.Error("listing groups failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.GroupDetailsResponse{Groups: make([]dto.GroupDetailResponse, 0, len(groups))}
	for i := range groups {
		resp.Groups = append(resp.Groups, dto.NewGroupDetailResponse(&groups[i]))
	}
	return resp, nil
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupDetailResponse, error) {
	if _, err := s.repo.GroupConfig.GetByID(ctx, req.GroupID); err == nil {
		return nil, ErrGroupExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("group lookup failed", zap.Error(err))
		return nil, err
	}

	group := &model.GroupConfig{
		GroupID:       req.GroupID,
		Name:          req.Name,
		SpreadsheetID: req.SpreadsheetID,
		IsActive:      true,
	}
	if err := s.repo.GroupConfig.Create(ctx, group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupExists
		}
		s.logger.Error("creating group failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("group created", zap.String("group_id", group.GroupID))

	resp := dto.NewGroupDetailResponse(group)
	return &resp, nil
}

func (s *groupService) Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest) (*dto.GroupDetailResponse, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.SpreadsheetID != nil {
		group.SpreadsheetID = *req.SpreadsheetID
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}

	if err := s.repo.GroupConfig.Update(ctx, group); err != nil {
		s.logger.Error("updating group failed", zap.Error(err))
		return nil, err
	}

	resp := dto.NewGroupDetailResponse(group)
	return &resp, nil
}

// Deactivate hides a group from pickers and blocks writes. Its sheet data
// is untouched and reports can still read it.
func (s *groupService) Deactivate(ctx context.Context, groupID string) error {
	return s.setActive(ctx, groupID, false)
}

func (s *groupService) Restore(ctx context.Context, groupID string) error {
	return s.setActive(ctx, groupID, true)
}

func (s *groupService) VisibleGroups(ctx context.Context, caller *dto.Caller) ([]model.GroupConfig, error) {
	groups, err := s.repo.GroupConfig.List(ctx)
	if err != nil {
		s.logger.Error("listing groups failed", zap.Error(err))
		return nil, err
	}

	if caller.Can(model.PermViewAllGroups) {
		return groups, nil
	}

	allowed := make(map[string]bool, len(caller.GroupIDs))
	for _, gid := range caller.GroupIDs {
		allowed[gid] = true
	}

	visible := groups[:0]
	for _, g := range groups {
		if allowed[g.GroupID] {
			visible = append(visible, g)
		}
	}
	return visible, nil
}

func (s *groupService) ResolveSpreadsheet(ctx context.Context, caller *dto.Caller, groupID string) (string, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	if !group.IsActive {
		return "", ErrGroupNotFound
	}
	if !caller.CanAccessGroup(groupID) {
		return "", ErrGroupAccessDenied
	}
	return s.SpreadsheetFor(group), nil
}

func (s *groupService) SpreadsheetFor(g *model.GroupConfig) string {
	if g.SpreadsheetID != "" {
		return g.SpreadsheetID
	}
	return s.cfg.Google.SpreadsheetID
}

// GroupsForReport keeps deactivated groups reachable when named
// explicitly: deactivation hides a group from pickers but its history
// stays reportable.
func (s *groupService) GroupsForReport(ctx context.Context, caller *dto.Caller, groupIDs []string) ([]model.GroupConfig, error) {
	if len(groupIDs) == 0 {
		return s.VisibleGroups(ctx, caller)
	}

	groups := make([]model.GroupConfig, 0, len(groupIDs))
	for _, gid := range groupIDs {
		group, err := s.getGroup(ctx, gid)
		if err != nil {
			return nil, err
		}
		if !caller.CanAccessGroup(gid) {
			return nil, ErrGroupAccessDenied
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

// ── helpers ──

func (s *groupService) getGroup(ctx context.Context, groupID string) (*model.GroupConfig, error) {
	group, err := s.repo.GroupConfig.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("group lookup failed", zap.Error(err))
		return nil, err
	}
	return group, nil
}

func (s *groupService) setActive(ctx context.Context, groupID string, active bool) error {
	if err := s.repo.GroupConfig.SetActive(ctx, groupID, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("toggling group failed", zap.Error(err))
		return err
	}
	s.logger.Info("group toggled", zap.String("group_id", groupID), zap.Bool("active", active))
	return nil
}
