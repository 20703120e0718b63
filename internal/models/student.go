package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is a child enrolled at an anganwadi.
type Student struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Gender      string    `gorm:"size:16" json:"gender"`
	Status      string    `gorm:"size:32;not null;default:ACTIVE" json:"status"`
	AnganwadiID *string   `gorm:"size:36;index" json:"anganwadi_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Anganwadi *Anganwadi `gorm:"foreignKey:AnganwadiID" json:"anganwadi,omitempty"`
}

const (
	// StudentStatusActive marks a currently enrolled student.
	StudentStatusActive = "ACTIVE"
	// StudentStatusInactive marks a student who is temporarily not attending.
	StudentStatusInactive = "INACTIVE"
	// StudentStatusDroppedOut marks a student who left the program.
	StudentStatusDroppedOut = "DROPPED_OUT"
)

// BeforeCreate assigns a UUID primary key.
func (s *Student) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
