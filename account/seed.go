package account

import (
	"context"
	"errors"

	"orghub/authority"
	"orghub/idgen"
	"orghub/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// DefaultSecurityConfiguration seeds the built-in permissions, the admin role and the initial administrator.
// An existing administrator keeps its password.
func DefaultSecurityConfiguration(adminEmail, initialPassword string) error {
	return persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		adminRole, err := authority.DefaultSecurityConfiguration(tx)
		if err != nil {
			return err
		}

		admin := User{}
		err = tx.Where("email = ?", adminEmail).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			secret, err := HashPassword(initialPassword)
			if err != nil {
				return err
			}
			admin = User{ID: idgen.NextID(userIdWorker), Name: "Admin User", Email: adminEmail, Secret: secret}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			logrus.Infof("initial administrator %s created", adminEmail)
		} else if err != nil {
			return err
		}
		return authority.AttachRoles(tx, admin.ID, []types.ID{adminRole.ID})
	})
}
