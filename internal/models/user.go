package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a dashboard account that manages the platform.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleAdmin has full access to every resource.
	RoleAdmin = "ADMIN"
	// RoleRegionalCoordinator manages cohorts and anganwadis within a region.
	RoleRegionalCoordinator = "REGIONAL_COORDINATOR"
	// RoleTeacher is issued to OTP-authenticated teachers.
	RoleTeacher = "TEACHER"
)

// BeforeCreate assigns a UUID primary key.
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
