package model

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255"`
	IsActive     bool   `gorm:"default:true"`
	IsVerified   bool   `gorm:"index"`
	AvatarURL    string `gorm:"size:500"`
	Role         Role   `gorm:"size:20;default:user;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Contact struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"size:100;index"`
	LastName  string `gorm:"size:100;index"`
	Email     string `gorm:"size:255;index"`
	Phone     string `gorm:"size:50"`
	Birthday  time.Time
	Extra     string `gorm:"type:text"`
	OwnerID   uint   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppMeta is a small key/value table for instance-wide settings
// (currently only the default avatar URL).
type AppMeta struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value string `gorm:"type:text"`
}

// Principal is the denormalized snapshot of a user's authorization-relevant
// fields kept in the cache. It is always derived from the User row and never
// authoritative.
type Principal struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	Role       Role   `json:"role"`
	AvatarURL  string `json:"avatar_url"`
}

func PrincipalFromUser(u User) Principal {
	return Principal{
		ID:         u.ID,
		Email:      u.Email,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Role:       u.Role,
		AvatarURL:  u.AvatarURL,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserID       uint
}
