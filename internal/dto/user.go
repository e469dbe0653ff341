package dto

// ── admin user management DTO ──

// ApproveUserRequest activates a pending account, optionally assigning the
// role and group allow-list in the same step.
type ApproveUserRequest struct {
	Role     *string  `json:"role"      binding:"omitempty,oneof=owner reception instructor"`
	GroupIDs []string `json:"group_ids" binding:"omitempty,dive,min=1"`
}

// UpdateUserRequest edits an account. Nil fields are left unchanged; a
// non-nil empty GroupIDs clears the allow-list.
type UpdateUserRequest struct {
	FirstName *string   `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string   `json:"last_name"  binding:"omitempty,max=100"`
	Phone     *string   `json:"phone"      binding:"omitempty,max=30"`
	Role      *string   `json:"role"       binding:"omitempty,oneof=owner reception instructor"`
	GroupIDs  *[]string `json:"group_ids"`
}

// UsersResponse lists accounts for the admin panel.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToggleActiveResponse reports the status an account landed on.
type ToggleActiveResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
