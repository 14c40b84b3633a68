package account

import (
	"errors"
	"strings"

	"orghub/authority"
	"orghub/bizerror"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	userIdWorker = idgen.NewWorker()

	QueryUsersFunc      = QueryUsers
	CreateUserFunc      = CreateUser
	DeleteUserFunc      = DeleteUser
	SyncUserRolesFunc   = SyncUserRoles
	AttachUserRolesFunc = AttachUserRoles
	DetachUserRoleFunc  = DetachUserRole
)

func HashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyCredentials returns the user owning email when password matches, bizerror.ErrUnauthenticated otherwise.
func VerifyCredentials(email, password string, s *session.Session) (*User, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	if err := db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Secret), []byte(password)); err != nil {
		return nil, bizerror.ErrUnauthenticated
	}
	return &user, nil
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.TraceContext())
	var users []User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		info, err := userInfoOf(db, u)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

func CreateUser(c UserCreation, s *session.Session) (*UserInfo, error) {
	secret, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Email: strings.TrimSpace(c.Email), Secret: secret}

	var info *UserInfo
	err = persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.NewValidationError("email", "The email has already been taken.")
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := authority.AttachRoles(tx, user.ID, c.Roles); err != nil {
			return err
		}
		i, err := userInfoOf(tx, user)
		info = i
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// DeleteUser removes the user and its role assignments.
func DeleteUser(id types.ID, s *session.Session) error {
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, id); err != nil {
			return err
		}
		if err := authority.ClearRoles(tx, id); err != nil {
			return err
		}
		return tx.Delete(&User{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	if n := session.RevokeIdentity(id); n > 0 {
		logrus.WithField("uid", id).Infof("%d session(s) of deleted user revoked", n)
	}
	return nil
}

func SyncUserRoles(id types.ID, roleIDs []types.ID, s *session.Session) (*UserInfo, error) {
	return mutateUserRoles(id, s, func(tx *gorm.DB) error {
		return authority.SyncRoles(tx, id, roleIDs)
	})
}

func AttachUserRoles(id types.ID, roleIDs []types.ID, s *session.Session) (*UserInfo, error) {
	return mutateUserRoles(id, s, func(tx *gorm.DB) error {
		return authority.AttachRoles(tx, id, roleIDs)
	})
}

func DetachUserRole(id, roleID types.ID, s *session.Session) (*UserInfo, error) {
	return mutateUserRoles(id, s, func(tx *gorm.DB) error {
		return authority.DetachRole(tx, id, roleID)
	})
}

func mutateUserRoles(id types.ID, s *session.Session, action func(tx *gorm.DB) error) (*UserInfo, error) {
	var info *UserInfo
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if err := action(tx); err != nil {
			return err
		}
		i, err := userInfoOf(tx, *user)
		info = i
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func findUser(db *gorm.DB, id types.ID) (*User, error) {
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func userInfoOf(db *gorm.DB, u User) (*UserInfo, error) {
	roles, err := authority.RolesOfUser(db, u.ID)
	if err != nil {
		return nil, err
	}
	return &UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roles}, nil
}
