package models

import (
	"time"

	"gorm.io/gorm"
)

// Anganwadi is a local childcare center; the unit students and an assigned
// teacher belong to.
type Anganwadi struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Location  string    `gorm:"size:255" json:"location"`
	District  string    `gorm:"size:255" json:"district"`
	State     string    `gorm:"size:255" json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Teachers []Teacher `gorm:"foreignKey:AnganwadiID" json:"teachers,omitempty"`
	Students []Student `gorm:"foreignKey:AnganwadiID" json:"students,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (a *Anganwadi) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
