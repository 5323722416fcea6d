package permission

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RolePermissionRow struct {
	RoleID string
	Slug   string
}

//go:generate mockgen -source=permission_repo.go -destination=mock/permission_repo_mock.go -package=mock
type Repository interface {
	// Resolution inputs
	GetUserRoleLinks(ctx context.Context) ([]UserRole, error)
	GetRolePermissionSlugs(ctx context.Context) ([]RolePermissionRow, error)
	GetOverridesForUser(ctx context.Context, userID string) ([]PermissionOverride, error)

	// Catalog
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermissionBySlug(ctx context.Context, slug string) (*Permission, error)

	// Role management
	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id string) error
	GetPermissionsByRoleID(ctx context.Context, roleID string) ([]Permission, error)
	UpdateRolePermissions(ctx context.Context, roleID string, permIDs []string) error

	// User links
	AssignRole(ctx context.Context, userID, roleID string) error
	UnassignRole(ctx context.Context, userID, roleID string) (bool, error)
	GetUserIDsByRole(ctx context.Context, roleID string) ([]string, error)

	// Overrides
	UpsertOverride(ctx context.Context, o *PermissionOverride) error
	DeleteOverride(ctx context.Context, userID, permissionID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserRoleLinks(ctx context.Context) ([]UserRole, error) {
	var result []UserRole
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Find(&result).Error
	return result, err
}

func (r *repository) GetRolePermissionSlugs(ctx context.Context) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.slug").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scan(&result).Error

	return result, err
}

func (r *repository) GetOverridesForUser(ctx context.Context, userID string) ([]PermissionOverride, error) {
	var result []PermissionOverride
	err := r.db.WithContext(ctx).
		Preload("Permission").
		Where("user_id = ?", userID).
		Find(&result).Error
	return result, err
}

func (r *repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var result []Permission
	err := r.db.WithContext(ctx).Order("category, label").Find(&result).Error
	return result, err
}

func (r *repository) GetPermissionBySlug(ctx context.Context, slug string) (*Permission, error) {
	var result Permission
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) ListRoles(ctx context.Context) ([]Role, error) {
	var result []Role
	err := r.db.WithContext(ctx).Find(&result).Error
	return result, err
}

func (r *repository) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	var result Role
	err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var result Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) CreateRole(ctx context.Context, role *Role) error {
	return r.db.WithContext(ctx).Omit("Permissions").Create(role).Error
}

func (r *repository) UpdateRole(ctx context.Context, role *Role) error {
	return r.db.WithContext(ctx).Omit("Permissions").Save(role).Error
}

func (r *repository) DeleteRole(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Role{}, "id = ?", id).Error
	})
}

func (r *repository) GetPermissionsByRoleID(ctx context.Context, roleID string) ([]Permission, error) {
	var result []Permission
	err := r.db.WithContext(ctx).
		Table("permissions").
		Select("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Scan(&result).Error
	return result, err
}

func (r *repository) UpdateRolePermissions(ctx context.Context, roleID string, permIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", roleID).Error; err != nil {
			return err
		}
		for _, permID := range permIDs {
			if err := tx.Exec(
				"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)",
				roleID, permID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) AssignRole(ctx context.Context, userID, roleID string) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_roles (user_id, role_id)
		VALUES (?, ?)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleID).Error
}

func (r *repository) UnassignRole(ctx context.Context, userID, roleID string) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		"DELETE FROM user_roles WHERE user_id = ? AND role_id = ?",
		userID, roleID,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repository) GetUserIDsByRole(ctx context.Context, roleID string) ([]string, error) {
	var result []string
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Where("role_id = ?", roleID).
		Pluck("user_id::text", &result).Error
	return result, err
}

func (r *repository) UpsertOverride(ctx context.Context, o *PermissionOverride) error {
	return r.db.WithContext(ctx).
		Omit("Permission").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "permission_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"type", "expires_at", "granted_by", "reason", "updated_at",
			}),
		}).
		Create(o).Error
}

func (r *repository) DeleteOverride(ctx context.Context, userID, permissionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("permission_id = ?", permissionID).
		Delete(&PermissionOverride{})
	return result.RowsAffected > 0, result.Error
}
