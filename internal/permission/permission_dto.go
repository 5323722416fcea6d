package permission

type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type PermissionResponse struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

type AssignRoleRequest struct {
	RoleID string `json:"role_id" binding:"required,uuid"`
}

type SetOverrideRequest struct {
	Slug      string  `json:"slug" binding:"required"`
	Type      string  `json:"type" binding:"required,oneof=grant revoke"`
	ExpiresAt *string `json:"expires_at"`
	Reason    string  `json:"reason"`
}

type OverrideResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Slug      string  `json:"slug"`
	Type      string  `json:"type"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	GrantedBy string  `json:"granted_by"`
	Reason    string  `json:"reason,omitempty"`
}

type EffectivePermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

type CheckResponse struct {
	UserID  string `json:"user_id"`
	Slug    string `json:"slug"`
	Allowed bool   `json:"allowed"`
}
