package models

import (
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordDigest string    `json:"-" gorm:"not null"`
	RememberToken  string    `json:"-" gorm:"index"`
	Admin          bool      `json:"admin" gorm:"default:false"`
	Essays         []Essay   `json:"essays,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Password and PasswordConfirmation only live on the candidate record.
	Password             string `json:"-" gorm:"-"`
	PasswordConfirmation string `json:"-" gorm:"-"`
}

// IsNew reports whether the user has not been persisted yet.
func (u *User) IsNew() bool {
	return u.ID == 0
}
