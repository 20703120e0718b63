package models

import (
	"time"

	"gorm.io/gorm"
)

// Teacher administers assessments for the anganwadi they are assigned to.
// Rank is the persisted cohort ranking; zero means unranked.
type Teacher struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Phone       string    `gorm:"size:32;uniqueIndex;not null" json:"phone"`
	CohortID    *string   `gorm:"size:36;index" json:"cohort_id"`
	AnganwadiID *string   `gorm:"size:36;index" json:"anganwadi_id"`
	IsVerified  bool      `gorm:"not null;default:false" json:"is_verified"`
	Rank        int       `gorm:"not null;default:0" json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Cohort    *Cohort    `gorm:"foreignKey:CohortID" json:"cohort,omitempty"`
	Anganwadi *Anganwadi `gorm:"foreignKey:AnganwadiID" json:"anganwadi,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (t *Teacher) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
