package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FirstName   string         `json:"first_name" gorm:"size:60"`
	LastName    string         `json:"last_name" gorm:"size:60"`
	Email       string         `json:"email" gorm:"uniqueIndex"`
	AvatarURL   string         `json:"avatar_url"`
	FirebaseUID string         `json:"firebase_uid,omitempty" gorm:"index"` // Link to Firebase User UID
	IsAdmin     bool           `json:"is_admin" gorm:"default:false"`
	IsBanned    bool           `json:"is_banned" gorm:"default:false;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserCompact is the public projection of a user embedded in feed responses
type UserCompact struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl"`
}

// ToCompact returns the public projection of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}

// DisplayName joins the name parts
func (u UserCompact) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
