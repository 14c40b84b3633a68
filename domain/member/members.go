package member

import (
	"strings"
	"time"

	"orghub/activity"
	"orghub/bizerror"
	"orghub/idgen"
	"orghub/persistence"
	"orghub/session"
	"orghub/storage"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const SourceType = "MEMBER"

type Member struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name" gorm:"not null"`
	Position string   `json:"position" gorm:"not null"`
	Phone    string   `json:"phone" gorm:"size:20"`
	Email    string   `json:"email" gorm:"not null;unique_index:uni_member_email"`
	Photo    string   `json:"photo"`
	Bio      string   `json:"bio" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MemberCreation struct {
	Name     string `json:"name" binding:"required,lte=255"`
	Position string `json:"position" binding:"required,lte=255"`
	Phone    string `json:"phone" binding:"required,lte=20"`
	Email    string `json:"email" binding:"required,email,lte=255"`
	Photo    string `json:"photo"`
	Bio      string `json:"bio"`
}

// MemberPatch only changes the fields present in the request.
type MemberPatch struct {
	Name     *string `json:"name" binding:"omitempty,lte=255"`
	Position *string `json:"position" binding:"omitempty,lte=255"`
	Phone    *string `json:"phone" binding:"omitempty,lte=20"`
	Email    *string `json:"email" binding:"omitempty,email,lte=255"`
	Photo    *string `json:"photo"`
	Bio      *string `json:"bio"`
}

var (
	idWorker = idgen.NewWorker()

	QueryMembersFunc = QueryMembers
	DetailMemberFunc = DetailMember
	CreateMemberFunc = CreateMember
	UpdateMemberFunc = UpdateMember
	DeleteMemberFunc = DeleteMember
)

func QueryMembers(s *session.Session) ([]Member, error) {
	members := []Member{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Order("id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func DetailMember(id types.ID, s *session.Session) (*Member, error) {
	m := Member{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func CreateMember(c MemberCreation, s *session.Session) (*Member, error) {
	m := Member{ID: idgen.NextID(idWorker), Name: c.Name, Position: c.Position, Phone: c.Phone,
		Email: strings.TrimSpace(c.Email), Photo: c.Photo, Bio: c.Bio}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := checkEmailUnique(tx, m.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, m.ID, m.Name, activity.CategoryCreated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &m, nil
}

func UpdateMember(id types.ID, p MemberPatch, s *session.Session) (*Member, error) {
	if err := bizerror.RejectBlank(map[string]*string{
		"name": p.Name, "position": p.Position, "phone": p.Phone, "email": p.Email}); err != nil {
		return nil, err
	}
	m := Member{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if p.Name != nil {
			changes["name"] = *p.Name
		}
		if p.Position != nil {
			changes["position"] = *p.Position
		}
		if p.Phone != nil {
			changes["phone"] = *p.Phone
		}
		if p.Email != nil {
			email := strings.TrimSpace(*p.Email)
			if err := checkEmailUnique(tx, email, id); err != nil {
				return err
			}
			changes["email"] = email
		}
		if p.Photo != nil {
			changes["photo"] = *p.Photo
		}
		if p.Bio != nil {
			changes["bio"] = *p.Bio
		}
		if len(changes) > 0 {
			if err := tx.Model(&m).Updates(changes).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
				return err
			}
		}
		r, err := activity.Create(SourceType, m.ID, m.Name, activity.CategoryUpdated, s, tx)
		record = r
		return err
	})
	if err != nil {
		return nil, err
	}
	activity.Dispatch(record)
	return &m, nil
}

// DeleteMember removes the member and then its stored photo.
func DeleteMember(id types.ID, s *session.Session) error {
	m := Member{}
	var record *activity.Record
	err := persistence.ActiveDataSourceManager.GormDB(s.TraceContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Member{}, "id = ?", id).Error; err != nil {
			return err
		}
		r, err := activity.Create(SourceType, m.ID, m.Name, activity.CategoryDeleted, s, tx)
		record = r
		return err
	})
	if err != nil {
		return err
	}
	storage.RemoveObjectFunc(m.Photo, s)
	activity.Dispatch(record)
	return nil
}

func checkEmailUnique(tx *gorm.DB, email string, self types.ID) error {
	var count int
	if err := tx.Model(&Member{}).Where("email = ? AND id <> ?", email, self).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.NewValidationError("email", "The email has already been taken.")
	}
	return nil
}
