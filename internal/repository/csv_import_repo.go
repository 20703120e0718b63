package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// CsvImportRepository defines data operations for import tracking records.
type CsvImportRepository interface {
	Create(ctx context.Context, record *models.CsvImport) error
	Update(ctx context.Context, record *models.CsvImport) error
	GetByID(ctx context.Context, id string) (models.CsvImport, error)
	List(ctx context.Context, page, limit int) ([]models.CsvImport, int64, error)
}

type csvImportRepository struct {
	db *gorm.DB
}

// NewCsvImportRepository instantiates the repository.
func NewCsvImportRepository(db *gorm.DB) CsvImportRepository {
	return &csvImportRepository{db: db}
}

func (r *csvImportRepository) Create(ctx context.Context, record *models.CsvImport) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *csvImportRepository) Update(ctx context.Context, record *models.CsvImport) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *csvImportRepository) GetByID(ctx context.Context, id string) (models.CsvImport, error) {
	var record models.CsvImport
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return models.CsvImport{}, err
	}

	return record, nil
}

func (r *csvImportRepository) List(ctx context.Context, page, limit int) ([]models.CsvImport, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CsvImport{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.CsvImport
	if err := r.db.WithContext(ctx).
		Order("imported_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
