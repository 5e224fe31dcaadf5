package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/msellami/medigate/services/auth/internal/models"
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateWithRole commits the user row and its role assignment as one
// transaction: either both land or neither does.
func (r *GormRepo) CreateWithRole(ctx context.Context, user *models.User, roleName string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		return tx.Create(&models.UserRole{
			UserID:     user.ID,
			RoleID:     role.ID,
			AssignedAt: time.Now().UTC(),
		}).Error
	})
}

func (r *GormRepo) SaveUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.DB.WithContext(ctx).Save(user).Error
}

func (r *GormRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *GormRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	var users []models.User
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	return users, err
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.DB.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}

// RolesOf returns the role names held by a user via the join table.
func (r *GormRepo) RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id").
		Pluck("roles.name", &names).Error
	return names, err
}

func (r *GormRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", strings.ToUpper(roleName)).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.UserRole{}).
			Where("user_id = ? AND role_id = ?", userID, role.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRoleAlreadyAssigned
		}

		return tx.Create(&models.UserRole{
			UserID:     userID,
			RoleID:     role.ID,
			AssignedAt: time.Now().UTC(),
		}).Error
	})
}

func (r *GormRepo) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", strings.ToUpper(roleName)).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, role.ID).
		Delete(&models.UserRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
