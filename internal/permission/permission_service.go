package permission

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	permissionerrors "go-hrportal/internal/permission/errors"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	EffectiveKeyPrefix = "permissions:effective:"
	effectiveCacheTTL  = 10 * time.Minute
)

func GetEffectiveKey(userID string) string {
	return EffectiveKeyPrefix + userID
}

//go:generate mockgen -source=permission_service.go -destination=mock/permission_service_mock.go -package=mock
type Service interface {
	HasPermission(ctx context.Context, userID, slug string) (bool, error)
	EffectivePermissions(ctx context.Context, userID string) ([]string, error)

	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error

	AssignRole(ctx context.Context, userID, roleID string) error
	UnassignRole(ctx context.Context, userID, roleID string) error

	SetOverride(ctx context.Context, actorID, userID string, req SetOverrideRequest) (OverrideResponse, error)
	ClearOverride(ctx context.Context, userID, slug string) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	rdb      *redis.Client
	sf       *singleflight.Group
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("permission.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("permission.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// HasPermission resolves a single slug for a user. Precedence, highest
// first: unexpired revoke override, unexpired grant override, role grant.
// Anything else is a deny.
func (s *service) HasPermission(ctx context.Context, userID, slug string) (bool, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return false, permissionerrors.ErrInvalidUserID
	}

	overrides, err := s.repo.GetOverridesForUser(ctx, userID)
	if err != nil {
		s.logger.Error("load overrides failed", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}

	now := time.Now().UTC()
	granted := false
	for _, o := range overrides {
		if o.Permission == nil || o.Permission.Slug != slug || o.Expired(now) {
			continue
		}
		if o.Type == OverrideTypeRevoke {
			return false, nil
		}
		if o.Type == OverrideTypeGrant {
			granted = true
		}
	}
	if granted {
		return true, nil
	}

	return s.enforceRoleTier(ctx, userID, slug)
}

func (s *service) enforceRoleTier(ctx context.Context, userID, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(ctx); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(userID, slug)
	if err != nil {
		s.logger.Error("enforce failed",
			zap.String("user_id", userID),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return false, err
	}

	return allowed, nil
}

func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	links, err := s.repo.GetUserRoleLinks(ctx)
	if err != nil {
		return err
	}
	for _, link := range links {
		if _, err := s.enforcer.AddGroupingPolicy(link.UserID.String(), link.RoleID.String()); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissionSlugs(ctx)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Slug); err != nil {
			return err
		}
	}

	return nil
}

// EffectivePermissions returns the full resolved slug set for a user:
// role grants plus unexpired grant overrides, minus unexpired revoke
// overrides. The result is cached per user and must always match what
// HasPermission would answer slug by slug.
func (s *service) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, permissionerrors.ErrInvalidUserID
	}

	cacheKey := GetEffectiveKey(userID)
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var slugs []string
			if err := json.Unmarshal([]byte(val), &slugs); err == nil {
				return slugs, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		slugs, err := s.resolveEffective(ctx, userID)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(slugs); err == nil {
				s.rdb.Set(ctx, cacheKey, payload, effectiveCacheTTL)
			}
		}

		return slugs, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}

func (s *service) resolveEffective(ctx context.Context, userID string) ([]string, error) {
	set := make(map[string]struct{})

	s.mu.Lock()
	err := s.loadPolicyUnlocked(ctx)
	if err == nil {
		var perms [][]string
		perms, err = s.enforcer.GetImplicitPermissionsForUser(userID)
		for _, p := range perms {
			if len(p) == 2 {
				set[p[1]] = struct{}{}
			}
		}
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	overrides, err := s.repo.GetOverridesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, o := range overrides {
		if o.Permission == nil || o.Expired(now) {
			continue
		}
		if o.Type == OverrideTypeGrant {
			set[o.Permission.Slug] = struct{}{}
		}
	}
	// Revokes win over both role grants and grant overrides
	for _, o := range overrides {
		if o.Permission == nil || o.Expired(now) {
			continue
		}
		if o.Type == OverrideTypeRevoke {
			delete(set, o.Permission.Slug)
		}
	}

	slugs := make([]string, 0, len(set))
	for slug := range set {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		resp[i] = PermissionResponse{
			ID:       p.ID.String(),
			Slug:     p.Slug,
			Label:    p.Label,
			Category: p.Category,
		}
	}
	return resp, nil
}

func (s *service) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		perms, err := s.repo.GetPermissionsByRoleID(ctx, role.ID.String())
		if err != nil {
			return nil, err
		}
		resp = append(resp, mapRoleResponse(role, perms))
	}
	return resp, nil
}

func (s *service) GetRole(ctx context.Context, id string) (RoleResponse, error) {
	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleResponse{}, permissionerrors.ErrRoleNotFound
		}
		return RoleResponse{}, err
	}

	perms, err := s.repo.GetPermissionsByRoleID(ctx, id)
	if err != nil {
		return RoleResponse{}, err
	}
	return mapRoleResponse(*role, perms), nil
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) (RoleResponse, error) {
	if existing, err := s.repo.GetRoleByName(ctx, req.Name); err == nil && existing != nil {
		return RoleResponse{}, permissionerrors.ErrRoleNameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return RoleResponse{}, err
	}

	role := &Role{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return RoleResponse{}, err
	}

	permIDs, err := s.resolveSlugIDs(ctx, req.Permissions)
	if err != nil {
		return RoleResponse{}, err
	}
	if err := s.repo.UpdateRolePermissions(ctx, role.ID.String(), permIDs); err != nil {
		return RoleResponse{}, err
	}

	s.logger.Info("role created",
		zap.String("role_id", role.ID.String()),
		zap.String("name", role.Name),
		zap.Int("permissions", len(permIDs)),
	)

	perms, err := s.repo.GetPermissionsByRoleID(ctx, role.ID.String())
	if err != nil {
		return RoleResponse{}, err
	}
	return mapRoleResponse(*role, perms), nil
}

func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (RoleResponse, error) {
	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleResponse{}, permissionerrors.ErrRoleNotFound
		}
		return RoleResponse{}, err
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return RoleResponse{}, err
	}

	if req.Permissions != nil {
		permIDs, err := s.resolveSlugIDs(ctx, req.Permissions)
		if err != nil {
			return RoleResponse{}, err
		}
		if err := s.repo.UpdateRolePermissions(ctx, id, permIDs); err != nil {
			return RoleResponse{}, err
		}
	}

	if err := s.invalidateRoleMembers(ctx, id); err != nil {
		s.logger.Error("invalidate role member caches failed", zap.String("role_id", id), zap.Error(err))
	}

	perms, err := s.repo.GetPermissionsByRoleID(ctx, id)
	if err != nil {
		return RoleResponse{}, err
	}
	return mapRoleResponse(*role, perms), nil
}

func (s *service) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.repo.GetRoleByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissionerrors.ErrRoleNotFound
		}
		return err
	}

	// Snapshot members before the links are removed
	userIDs, err := s.repo.GetUserIDsByRole(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}

	s.invalidateUsers(ctx, userIDs...)
	s.logger.Info("role deleted", zap.String("role_id", id), zap.Int("affected_users", len(userIDs)))
	return nil
}

func (s *service) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return permissionerrors.ErrInvalidUserID
	}
	if _, err := s.repo.GetRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissionerrors.ErrRoleNotFound
		}
		return err
	}

	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}

	s.invalidateUsers(ctx, userID)
	s.logger.Info("role assigned", zap.String("user_id", userID), zap.String("role_id", roleID))
	return nil
}

func (s *service) UnassignRole(ctx context.Context, userID, roleID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return permissionerrors.ErrInvalidUserID
	}

	removed, err := s.repo.UnassignRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if !removed {
		return permissionerrors.ErrRoleNotAssigned
	}

	s.invalidateUsers(ctx, userID)
	s.logger.Info("role unassigned", zap.String("user_id", userID), zap.String("role_id", roleID))
	return nil
}

func (s *service) SetOverride(ctx context.Context, actorID, userID string, req SetOverrideRequest) (OverrideResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return OverrideResponse{}, permissionerrors.ErrInvalidUserID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return OverrideResponse{}, permissionerrors.ErrInvalidActorID
	}
	if req.Type != OverrideTypeGrant && req.Type != OverrideTypeRevoke {
		return OverrideResponse{}, permissionerrors.ErrInvalidOverrideType
	}

	perm, err := s.repo.GetPermissionBySlug(ctx, req.Slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OverrideResponse{}, permissionerrors.ErrPermissionNotFound
		}
		return OverrideResponse{}, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return OverrideResponse{}, permissionerrors.ErrInvalidExpiry
		}
		utc := t.UTC()
		expiresAt = &utc
	}

	o := &PermissionOverride{
		ID:           uuid.New(),
		UserID:       userUUID,
		PermissionID: perm.ID,
		Type:         req.Type,
		ExpiresAt:    expiresAt,
		GrantedBy:    actorUUID,
		Reason:       req.Reason,
	}
	if err := s.repo.UpsertOverride(ctx, o); err != nil {
		return OverrideResponse{}, err
	}

	s.invalidateUsers(ctx, userID)
	s.logger.Info("permission override set",
		zap.String("user_id", userID),
		zap.String("slug", req.Slug),
		zap.String("type", req.Type),
		zap.String("granted_by", actorID),
	)

	return mapOverrideResponse(*o, perm.Slug), nil
}

func (s *service) ClearOverride(ctx context.Context, userID, slug string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return permissionerrors.ErrInvalidUserID
	}

	perm, err := s.repo.GetPermissionBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissionerrors.ErrPermissionNotFound
		}
		return err
	}

	removed, err := s.repo.DeleteOverride(ctx, userID, perm.ID.String())
	if err != nil {
		return err
	}
	if !removed {
		return permissionerrors.ErrOverrideNotFound
	}

	s.invalidateUsers(ctx, userID)
	s.logger.Info("permission override cleared",
		zap.String("user_id", userID),
		zap.String("slug", slug),
	)
	return nil
}

func (s *service) resolveSlugIDs(ctx context.Context, slugs []string) ([]string, error) {
	ids := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		perm, err := s.repo.GetPermissionBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, permissionerrors.ErrPermissionNotFound
			}
			return nil, err
		}
		ids = append(ids, perm.ID.String())
	}
	return ids, nil
}

func (s *service) invalidateRoleMembers(ctx context.Context, roleID string) error {
	userIDs, err := s.repo.GetUserIDsByRole(ctx, roleID)
	if err != nil {
		return err
	}
	s.invalidateUsers(ctx, userIDs...)
	return nil
}

func (s *service) invalidateUsers(ctx context.Context, userIDs ...string) {
	if s.rdb == nil || len(userIDs) == 0 {
		return
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = GetEffectiveKey(id)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("invalidate permission cache failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

func mapRoleResponse(role Role, perms []Permission) RoleResponse {
	slugs := make([]string, len(perms))
	for i, p := range perms {
		slugs[i] = p.Slug
	}
	sort.Strings(slugs)

	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		Permissions: slugs,
	}
}

func mapOverrideResponse(o PermissionOverride, slug string) OverrideResponse {
	resp := OverrideResponse{
		ID:        o.ID.String(),
		UserID:    o.UserID.String(),
		Slug:      slug,
		Type:      o.Type,
		GrantedBy: o.GrantedBy.String(),
		Reason:    o.Reason,
	}
	if o.ExpiresAt != nil {
		v := o.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &v
	}
	return resp
}
