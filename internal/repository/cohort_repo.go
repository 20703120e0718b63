package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// CohortRepository defines data operations for cohorts.
type CohortRepository interface {
	Create(ctx context.Context, cohort *models.Cohort, teacherIDs []string) error
	List(ctx context.Context) ([]models.Cohort, error)
	GetByID(ctx context.Context, id string) (models.Cohort, error)
	Delete(ctx context.Context, id string) error
}

type cohortRepository struct {
	db *gorm.DB
}

// NewCohortRepository instantiates the repository.
func NewCohortRepository(db *gorm.DB) CohortRepository {
	return &cohortRepository{db: db}
}

// Create writes the cohort and claims the given teachers in one transaction.
func (r *cohortRepository) Create(ctx context.Context, cohort *models.Cohort, teacherIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cohort).Error; err != nil {
			return err
		}

		if len(teacherIDs) > 0 {
			if err := tx.Model(&models.Teacher{}).
				Where("id IN ?", teacherIDs).
				Update("cohort_id", cohort.ID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *cohortRepository) List(ctx context.Context) ([]models.Cohort, error) {
	var cohorts []models.Cohort
	if err := r.db.WithContext(ctx).
		Preload("Teachers").
		Order("name ASC").
		Find(&cohorts).Error; err != nil {
		return nil, err
	}

	return cohorts, nil
}

func (r *cohortRepository) GetByID(ctx context.Context, id string) (models.Cohort, error) {
	var cohort models.Cohort
	if err := r.db.WithContext(ctx).
		Preload("Teachers").
		Preload("Teachers.Anganwadi").
		Where("id = ?", id).
		First(&cohort).Error; err != nil {
		return models.Cohort{}, err
	}

	return cohort, nil
}

func (r *cohortRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Cohort{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
