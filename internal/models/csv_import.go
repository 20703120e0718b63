package models

import (
	"time"

	"gorm.io/gorm"
)

// CsvImport tracks a bulk student import, including per-row accounting and
// an accumulated error log.
type CsvImport struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ImportedBy  string    `gorm:"size:36;not null" json:"imported_by"`
	Status      string    `gorm:"size:32;not null;default:PENDING" json:"status"`
	TotalRows   int       `gorm:"not null;default:0" json:"total_rows"`
	SuccessRows int       `gorm:"not null;default:0" json:"success_rows"`
	FailedRows  int       `gorm:"not null;default:0" json:"failed_rows"`
	ErrorLog    string    `gorm:"type:text" json:"error_log"`
	ImportedAt  time.Time `gorm:"not null" json:"imported_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	// CsvImportStatusPending means the import record exists but processing has not started.
	CsvImportStatusPending = "PENDING"
	// CsvImportStatusProcessing means rows are being consumed.
	CsvImportStatusProcessing = "PROCESSING"
	// CsvImportStatusCompleted means the whole file was consumed; individual rows may still have failed.
	CsvImportStatusCompleted = "COMPLETED"
	// CsvImportStatusFailed means processing aborted before the end of the file.
	CsvImportStatusFailed = "FAILED"
)

// BeforeCreate assigns a UUID primary key.
func (c *CsvImport) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
