package permission

import (
	"time"

	"github.com/google/uuid"
)

const (
	OverrideTypeGrant  = "grant"
	OverrideTypeRevoke = "revoke"
)

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_roles_name"`
	Description string    `gorm:"type:text"`

	Permissions []Permission `gorm:"many2many:role_permissions"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Permission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug     string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_permissions_slug"`
	Label    string    `gorm:"type:varchar(150)"`
	Category string    `gorm:"type:varchar(50);index:idx_permissions_category"`
}

type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// PermissionOverride is a per-user grant or revoke of one permission that
// supersedes anything derived from roles. At most one row exists per
// (user, permission); re-granting replaces the previous override.
type PermissionOverride struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_overrides_user_permission"`
	PermissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_overrides_user_permission"`

	Type      string     `gorm:"type:varchar(10);not null"`
	ExpiresAt *time.Time `gorm:"index:idx_overrides_expires_at"`
	GrantedBy uuid.UUID  `gorm:"type:uuid;not null"`
	Reason    string     `gorm:"type:text"`

	Permission *Permission `gorm:"foreignKey:PermissionID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired overrides are ignored by resolution, never deleted.
func (o *PermissionOverride) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}
