package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Permission is one menu row the backend grants to a role. Icon is whatever
// the backend stored and is never trusted for rendering.
type Permission struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	Role       string `gorm:"type:varchar(50);not null;index" json:"-"`
	Capability string `gorm:"type:varchar(50);not null" json:"capability"`
	Icon       string `gorm:"type:varchar(100)" json:"icon,omitempty"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token       string       `json:"token"`
	User        User         `json:"user"`
	Permissions []Permission `json:"permissions"`
}
