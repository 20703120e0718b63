package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// CsvImportResponse serializes an import tracking record.
type CsvImportResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ImportedBy  string    `json:"imported_by"`
	Status      string    `json:"status"`
	TotalRows   int       `json:"total_rows"`
	SuccessRows int       `json:"success_rows"`
	FailedRows  int       `json:"failed_rows"`
	ErrorLog    string    `json:"error_log"`
	ImportedAt  time.Time `json:"imported_at"`
}

// CsvImportListResponse pages through import records.
type CsvImportListResponse struct {
	Data       []CsvImportResponse `json:"data"`
	Pagination PaginationMeta      `json:"pagination"`
}

// NewCsvImportResponse converts an import model into a DTO.
func NewCsvImportResponse(model models.CsvImport) CsvImportResponse {
	return CsvImportResponse{
		ID:          model.ID,
		Filename:    model.Filename,
		ImportedBy:  model.ImportedBy,
		Status:      model.Status,
		TotalRows:   model.TotalRows,
		SuccessRows: model.SuccessRows,
		FailedRows:  model.FailedRows,
		ErrorLog:    model.ErrorLog,
		ImportedAt:  model.ImportedAt,
	}
}
