package dto

import "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"

// ── auth requests ──

// LoginRequest accepts the username or the e-mail address in the username
// field; reception staff habitually use either.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-service instructor registration. Accounts
// start as pending and cannot log in until approved.
type RegisterRequest struct {
	Username  string `json:"username"   binding:"required,min=3,max=50"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	Phone     string `json:"phone"      binding:"omitempty,max=30"`
}

// ChangePasswordRequest changes the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=8,max=72"`
}

// ForgotPasswordRequest starts the e-mail reset flow. The endpoint answers
// 200 whether or not the address exists.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the e-mail reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token"        binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ── auth responses ──

// UserResponse is the account shape returned to clients (no hash).
type UserResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone,omitempty"`
	Role      string   `json:"role"`
	Status    string   `json:"status"`
	GroupIDs  []string `json:"group_ids"`
	CreatedAt string   `json:"created_at"`
}

// LoginResponse is returned by POST /api/auth/login; the session itself
// travels in the cookie.
type LoginResponse struct {
	User UserResponse `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}

// ── authenticated caller ──

// Caller is the authenticated principal the session middleware injects and
// services authorize against.
type Caller struct {
	ID       string   `json:"id"`
	Role     string   `json:"role"`
	GroupIDs []string `json:"group_ids"`
}

// Can reports whether the caller's role grants a permission.
func (c *Caller) Can(perm model.Permission) bool {
	return model.HasPermission(c.Role, perm)
}

// CanAccessGroup reports whether the caller may touch a group: blanket
// view permission or an explicit assignment.
func (c *Caller) CanAccessGroup(groupID string) bool {
	if c.Can(model.PermViewAllGroups) {
		return true
	}
	for _, gid := range c.GroupIDs {
		if gid == groupID {
			return true
		}
	}
	return false
}

// NewUserResponse maps an account model to its client shape.
func NewUserResponse(inst *model.Instructor) UserResponse {
	groupIDs := inst.GroupIDs()
	if groupIDs == nil {
		groupIDs = []string{}
	}
	return UserResponse{
		ID:        inst.ID,
		Username:  inst.Username,
		Email:     inst.Email,
		FirstName: inst.FirstName,
		LastName:  inst.LastName,
		Phone:     inst.Phone,
		Role:      inst.Role,
		Status:    inst.Status,
		GroupIDs:  groupIDs,
		CreatedAt: inst.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
