package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"       json:"id"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string     `gorm:"not null"                   json:"-"`
	FirstName      string     `gorm:"size:100"                   json:"firstName"`
	LastName       string     `gorm:"size:100"                   json:"lastName"`
	Phone          string     `gorm:"size:20"                    json:"phone,omitempty"`
	IsActive       bool       `gorm:"not null;default:true"      json:"isActive"`
	EmailConfirmed bool       `gorm:"not null;default:false"     json:"emailConfirmed"`
	CreatedAt      time.Time  `gorm:"not null"                   json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null"                   json:"updatedAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string `gorm:"size:255"                 json:"description,omitempty"`
}

type UserRole struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID     uint      `gorm:"primaryKey"           json:"role_id"`
	AssignedAt time.Time `gorm:"not null"             json:"assigned_at"`
}

// RefreshToken is one row of the token ledger. Only the sha256 of the opaque
// value is stored; ReplacedBy points at the successor's hash so rotation
// chains stay traceable.
type RefreshToken struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt     time.Time  `gorm:"not null"             json:"expires_at"`
	CreatedAt     time.Time  `gorm:"not null"             json:"created_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason string     `gorm:"size:255"             json:"revoked_reason,omitempty"`
	ReplacedBy    string     `gorm:"size:64"              json:"replaced_by,omitempty"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsActive: not revoked and not expired. A revoked token never becomes
// active again.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}
