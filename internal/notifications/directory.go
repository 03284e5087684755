package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/truckbites/truckbites-backend/pkg/db/models"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Directory resolves notification recipients from the users read-model.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// EmailFor returns the email address on file for a user.
func (d *Directory) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Select("email").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user email")
	}
	return user.Email, nil
}
