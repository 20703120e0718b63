package models

import (
	"time"

	"gorm.io/gorm"
)

// Cohort groups teachers for rollup ranking and reporting.
type Cohort struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Region    string    `gorm:"size:255;not null" json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Teachers []Teacher `gorm:"foreignKey:CohortID" json:"teachers,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (c *Cohort) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
