// Package authz decides whether a principal may access a registered admin
// page, and caches those decisions.
package authz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/models"
)

// DashboardRoot is the guaranteed post-login landing page. It is always
// accessible to an authenticated principal.
const DashboardRoot = "/admin/dashboard"

// Resolver answers page-access questions from the page→role associations.
// The Redis client is optional; a nil client disables the lookup cache.
type Resolver struct {
	db       *gorm.DB
	redis    *redis.Client
	prefix   string
	cacheTTL time.Duration
	log      *zap.SugaredLogger
}

func NewResolver(db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Resolver {
	return &Resolver{
		db:       db,
		redis:    rdb,
		prefix:   "magpress:",
		cacheTTL: 30 * time.Minute,
		log:      log,
	}
}

// Resolve decides whether a principal holding roleNames may access path.
// Unregistered or inactive pages deny; a page with zero granted roles denies
// for everyone; otherwise any one matching role suffices. "No access" is a
// false result, not an error; only infrastructure failures return errors.
func (r *Resolver) Resolve(ctx context.Context, path string, roleNames []string) (bool, error) {
	if path == DashboardRoot {
		return true, nil
	}

	granted, registered, err := r.pageRoles(ctx, path)
	if err != nil {
		return false, err
	}
	if !registered || len(granted) == 0 {
		return false, nil
	}

	allowed := make(map[string]struct{}, len(granted))
	for _, name := range granted {
		allowed[name] = struct{}{}
	}
	for _, name := range roleNames {
		if _, ok := allowed[name]; ok {
			return true, nil
		}
	}
	return false, nil
}

// pageRoles returns the role names granted to the active page at path.
// registered is false when no such page exists.
func (r *Resolver) pageRoles(ctx context.Context, path string) (roles []string, registered bool, err error) {
	if cached, ok := r.cachedRoles(ctx, path); ok {
		return cached, true, nil
	}

	var page models.Page
	if err := r.db.WithContext(ctx).Where("path = ? AND active = ?", path, true).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, apperr.Persistence("load page", err)
	}

	roles = []string{}
	err = r.db.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN page_roles pr ON pr.role_id = roles.id").
		Where("pr.page_id = ? AND roles.active = ?", page.ID, true).
		Pluck("roles.name", &roles).Error
	if err != nil {
		return nil, false, apperr.Persistence("load page roles", err)
	}

	r.cacheRoles(ctx, path, roles)
	return roles, true, nil
}

func (r *Resolver) cacheKey(path string) string {
	return r.prefix + "page:" + path + ":roles"
}

func (r *Resolver) cachedRoles(ctx context.Context, path string) ([]string, bool) {
	if r.redis == nil {
		return nil, false
	}
	val, err := r.redis.Get(ctx, r.cacheKey(path)).Result()
	if err != nil {
		return nil, false
	}
	var roles []string
	if err := json.Unmarshal([]byte(val), &roles); err != nil {
		return nil, false
	}
	return roles, true
}

func (r *Resolver) cacheRoles(ctx context.Context, path string, roles []string) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(roles)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, r.cacheKey(path), data, r.cacheTTL).Err(); err != nil {
		r.log.Warnw("page role cache write failed", "path", path, "error", err)
	}
}

// InvalidatePage drops the cached role set for one page path.
func (r *Resolver) InvalidatePage(ctx context.Context, path string) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, r.cacheKey(path))
}

// InvalidateAll drops every cached page role set.
func (r *Resolver) InvalidateAll(ctx context.Context) {
	if r.redis == nil {
		return
	}
	keys, err := r.redis.Keys(ctx, r.prefix+"page:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	r.redis.Del(ctx, keys...)
}
