package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/msellami/medigate/pkg/tokens"
	"github.com/msellami/medigate/services/auth/internal/models"
)

// SaveRefresh inserts a ledger row for a freshly issued refresh value.
func (r *GormRepo) SaveRefresh(ctx context.Context, userID uuid.UUID, value string, expiresAt time.Time) (*models.RefreshToken, error) {
	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokens.Sha256Hex(value),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormRepo) FindRefreshByValue(ctx context.Context, value string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token_hash = ?", tokens.Sha256Hex(value)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ConditionalRevoke is the rotation primitive: a single conditional UPDATE
// that only touches a row that is still active. Zero rows affected means the
// token was already revoked or expired, no matter what an earlier read said.
func (r *GormRepo) ConditionalRevoke(ctx context.Context, value, reason string) (int64, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", tokens.Sha256Hex(value), now).
		Updates(map[string]any{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// Revoke marks a token revoked regardless of expiry. Used by logout, where
// revoking an already-expired token is harmless.
func (r *GormRepo) Revoke(ctx context.Context, value, reason string) (int64, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokens.Sha256Hex(value)).
		Updates(map[string]any{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// SetReplacedBy links a rotated-out token to its successor.
func (r *GormRepo) SetReplacedBy(ctx context.Context, oldValue, newValue string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokens.Sha256Hex(oldValue)).
		Update("replaced_by", tokens.Sha256Hex(newValue)).Error
}

// RevokeAllForUser revokes every active token a user holds. Returns the
// number of sessions it ended.
func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Updates(map[string]any{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error) {
	var records []models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now().UTC()).
		Order("created_at").
		Find(&records).Error
	return records, err
}
