package account

import (
	"time"

	"orghub/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name" gorm:"not null"`
	Email  string   `json:"email" gorm:"not null;unique_index:uni_user_email"`
	Secret string   `json:"-" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserInfo struct {
	ID    types.ID         `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Roles []authority.Role `json:"roles"`
}

type UserCreation struct {
	Name     string     `json:"name" binding:"required,lte=255"`
	Email    string     `json:"email" binding:"required,email,lte=255"`
	Password string     `json:"password" binding:"required,gte=8,lte=72"`
	Roles    []types.ID `json:"roles"`
}
