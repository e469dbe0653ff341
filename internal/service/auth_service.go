package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/mailer"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountPending     = errors.New("account is awaiting approval")
	ErrAccountInactive    = errors.New("account has been deactivated")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrEmailExists        = errors.New("email is already registered")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
)

const bcryptCost = 10

// callerCacheTTL bounds how long a cached auth context may outlive a
// revocation performed by another node.
const callerCacheTTL = 5 * time.Minute

// AuthService covers login, sessions and the password lifecycle.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.LoginResponse, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*dto.Caller, error)
	Me(ctx context.Context, instructorID string) (*dto.MeResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, instructorID, currentToken string, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	cfg      *config.Config
	repo     *repository.Repository
	sessMgr  *session.Manager
	tokenMgr *token.Manager
	mailer   mailer.Mailer
	rdb      *redis.Client
	logger   *zap.Logger
}

// NewAuthService creates an AuthService instance.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	sessMgr *session.Manager,
	tokenMgr *token.Manager,
	mail mailer.Mailer,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:      cfg,
		repo:     repo,
		sessMgr:  sessMgr,
		tokenMgr: tokenMgr,
		mailer:   mail,
		rdb:      rdb,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.LoginResponse, string, error) {
	// 1. Look up the account by username, falling back to email.
	inst, err := s.findAccount(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, "", err
	}

	// 2. Verify the password before revealing account state.
	if err := bcrypt.CompareHashAndPassword([]byte(inst.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	switch inst.Status {
	case model.AccountActive:
	case model.AccountPending:
		return nil, "", ErrAccountPending
	default:
		return nil, "", ErrAccountInactive
	}

	// 3. Issue a server-side session.
	tok, err := s.sessMgr.NewToken()
	if err != nil {
		s.logger.Error("generating session token failed", zap.Error(err))
		return nil, "", err
	}

	sess := &model.AuthSession{
		Token:        tok,
		InstructorID: inst.ID,
		ExpiresAt:    time.Now().Add(s.sessMgr.TTL()),
		UserAgent:    userAgent,
		IP:           ip,
	}
	if err := s.repo.AuthSession.Create(ctx, sess); err != nil {
		s.logger.Error("persisting session failed", zap.Error(err))
		return nil, "", err
	}

	s.cacheCaller(ctx, tok, s.callerOf(inst), sess.ExpiresAt)

	s.logger.Info("login",
		zap.String("instructor_id", inst.ID),
		zap.String("username", inst.Username),
		zap.String("role", inst.Role))

	return &dto.LoginResponse{User: dto.NewUserResponse(inst)}, tok, nil
}

func (s *authService) Logout(ctx context.Context, tok string) error {
	if err := s.repo.AuthSession.Delete(ctx, tok); err != nil {
		s.logger.Error("deleting session failed", zap.Error(err))
		return err
	}
	s.dropCachedCaller(ctx, tok)
	return nil
}

// Authenticate resolves a session token to its caller. Redis answers the
// hot path; the sessions table stays the source of truth.
func (s *authService) Authenticate(ctx context.Context, tok string) (*dto.Caller, error) {
	if s.rdb != nil {
		payload, ok, err := s.rdb.GetSession(ctx, tok)
		if err != nil {
			s.logger.Warn("session cache read failed", zap.Error(err))
		} else if ok {
			var caller dto.Caller
			if err := json.Unmarshal([]byte(payload), &caller); err == nil {
				return &caller, nil
			}
		}
	}

	sess, err := s.repo.AuthSession.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("session lookup failed", zap.Error(err))
		return nil, err
	}

	if sess.Expired(time.Now()) {
		// Lazy cleanup; a reaper is not worth running for this volume.
		_ = s.repo.AuthSession.Delete(ctx, tok)
		return nil, ErrSessionNotFound
	}

	if sess.Instructor == nil || sess.Instructor.Status != model.AccountActive {
		return nil, ErrAccountInactive
	}

	caller := s.callerOf(sess.Instructor)
	s.cacheCaller(ctx, tok, caller, sess.ExpiresAt)
	return caller, nil
}

func (s *authService) Me(ctx context.Context, instructorID string) (*dto.MeResponse, error) {
	inst, err := s.repo.Instructor.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("profile lookup failed", zap.Error(err))
		return nil, err
	}

	return &dto.MeResponse{
		User:        dto.NewUserResponse(inst),
		Permissions: model.PermissionsFor(inst.Role),
	}, nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 1. Pre-check both unique columns for precise errors.
	if _, err := s.repo.Instructor.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("username check failed", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Instructor.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("email check failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("hashing password failed", zap.Error(err))
		return nil, err
	}

	inst := &model.Instructor{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RoleInstructor,
		Status:       model.AccountPending,
	}

	// 2. Create; the unique indexes close the pre-check race.
	if err := s.repo.Instructor.Create(ctx, inst); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if _, lookupErr := s.repo.Instructor.GetByUsername(ctx, username); lookupErr == nil {
				return nil, ErrUsernameExists
			}
			return nil, ErrEmailExists
		}
		s.logger.Error("creating account failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("account registered, awaiting approval",
		zap.String("instructor_id", inst.ID),
		zap.String("username", inst.Username))

	resp := dto.NewUserResponse(inst)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, instructorID, currentToken string, req *dto.ChangePasswordRequest) error {
	inst, err := s.repo.Instructor.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(inst.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}
	inst.PasswordHash = string(hash)
	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		s.logger.Error("updating password failed", zap.Error(err))
		return err
	}

	// Revoke every other session; the one performing the change survives.
	tokens, err := s.repo.AuthSession.ListTokensByInstructor(ctx, instructorID)
	if err != nil {
		s.logger.Warn("listing sessions for revocation failed", zap.Error(err))
		return nil
	}
	for _, t := range tokens {
		if t == currentToken {
			continue
		}
		if err := s.repo.AuthSession.Delete(ctx, t); err != nil {
			s.logger.Warn("revoking session failed", zap.Error(err))
		}
		s.dropCachedCaller(ctx, t)
	}

	s.logger.Info("password changed", zap.String("instructor_id", instructorID))
	return nil
}

// ForgotPassword never reports whether the email exists.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	inst, err := s.repo.Instructor.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("reset lookup failed", zap.Error(err))
		}
		return nil
	}
	if inst.Status != model.AccountActive {
		return nil
	}

	tok, err := s.tokenMgr.GenerateResetToken(inst.ID)
	if err != nil {
		s.logger.Error("generating reset token failed", zap.Error(err))
		return nil
	}

	resetURL := strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(tok)
	if err := s.mailer.SendPasswordReset(ctx, inst.Email, inst.FirstName, resetURL); err != nil {
		s.logger.Error("sending reset mail failed",
			zap.String("instructor_id", inst.ID), zap.Error(err))
		return nil
	}

	s.logger.Info("reset mail sent", zap.String("instructor_id", inst.ID))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	instructorID, err := s.tokenMgr.ParseResetToken(req.Token)
	if err != nil {
		return ErrResetTokenInvalid
	}

	inst, err := s.repo.Instructor.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}
	inst.PasswordHash = string(hash)
	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		s.logger.Error("updating password failed", zap.Error(err))
		return err
	}

	// A reset token may have leaked; revoke everything.
	tokens, err := s.repo.AuthSession.ListTokensByInstructor(ctx, instructorID)
	if err == nil {
		for _, t := range tokens {
			s.dropCachedCaller(ctx, t)
		}
	}
	if err := s.repo.AuthSession.DeleteByInstructor(ctx, instructorID); err != nil {
		s.logger.Warn("revoking sessions failed", zap.Error(err))
	}

	s.logger.Info("password reset", zap.String("instructor_id", instructorID))
	return nil
}

// ── helpers ──

// findAccount accepts either the username or the email address.
func (s *authService) findAccount(ctx context.Context, login string) (*model.Instructor, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	inst, err := s.repo.Instructor.GetByUsername(ctx, login)
	if err == nil {
		return inst, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(login, "@") {
		return s.repo.Instructor.GetByEmail(ctx, login)
	}
	return nil, err
}

func (s *authService) callerOf(inst *model.Instructor) *dto.Caller {
	return &dto.Caller{
		ID:       inst.ID,
		Role:     inst.Role,
		GroupIDs: inst.GroupIDs(),
	}
}

// cacheCaller mirrors the auth context into Redis. Best effort: auth
// falls through to Postgres when Redis is down or absent.
func (s *authService) cacheCaller(ctx context.Context, tok string, caller *dto.Caller, expiresAt time.Time) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(caller)
	if err != nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl > callerCacheTTL {
		ttl = callerCacheTTL
	}
	if ttl <= 0 {
		return
	}
	if err := s.rdb.CacheSession(ctx, tok, string(payload), ttl); err != nil {
		s.logger.Warn("session cache write failed", zap.Error(err))
	}
}

func (s *authService) dropCachedCaller(ctx context.Context, tok string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.DeleteSession(ctx, tok); err != nil {
		s.logger.Warn("session cache delete failed", zap.Error(err))
	}
}
