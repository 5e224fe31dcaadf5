package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/msellami/medigate/services/auth/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
)

type GormRepo struct {
	DB *gorm.DB
}

// Migrate creates the auth tables and seeds the fixed role set.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.RefreshToken{},
	); err != nil {
		return err
	}

	seed := []models.Role{
		{Name: "ADMIN", Description: "Administrateur système"},
		{Name: "MEDECIN", Description: "Médecin spécialiste"},
		{Name: "PATIENT", Description: "Patient"},
	}
	for _, role := range seed {
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
