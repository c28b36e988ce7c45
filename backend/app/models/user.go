package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a directory entry. Deleted users are kept (soft delete) so their
// activity can still be attributed.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"index;size:191;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:32;not null;default:user"`
	FullName     string `gorm:"size:255"`
	Phone        string `gorm:"size:64"`
	Address      string `gorm:"size:512"`
	GridAddress  string `gorm:"size:255"`
	Department   string `gorm:"size:255"`
	BPS          string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
