package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// AnganwadiRepository defines data operations for anganwadi centers.
type AnganwadiRepository interface {
	Create(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error
	List(ctx context.Context) ([]models.Anganwadi, error)
	GetByID(ctx context.Context, id string) (models.Anganwadi, error)
	GetByName(ctx context.Context, name string) (models.Anganwadi, error)
	Update(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error
	Delete(ctx context.Context, id string) error
	FilterExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type anganwadiRepository struct {
	db *gorm.DB
}

// NewAnganwadiRepository instantiates the repository.
func NewAnganwadiRepository(db *gorm.DB) AnganwadiRepository {
	return &anganwadiRepository{db: db}
}

// Create writes the anganwadi and claims the given teachers and students in
// one transaction.
func (r *anganwadiRepository) Create(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(anganwadi).Error; err != nil {
			return err
		}

		return assignMembers(tx, anganwadi.ID, teacherIDs, studentIDs)
	})
}

func (r *anganwadiRepository) List(ctx context.Context) ([]models.Anganwadi, error) {
	var anganwadis []models.Anganwadi
	if err := r.db.WithContext(ctx).
		Preload("Teachers").
		Preload("Students").
		Order("name ASC").
		Find(&anganwadis).Error; err != nil {
		return nil, err
	}

	return anganwadis, nil
}

func (r *anganwadiRepository) GetByID(ctx context.Context, id string) (models.Anganwadi, error) {
	var anganwadi models.Anganwadi
	if err := r.db.WithContext(ctx).
		Preload("Teachers").
		Preload("Students").
		Where("id = ?", id).
		First(&anganwadi).Error; err != nil {
		return models.Anganwadi{}, err
	}

	return anganwadi, nil
}

// GetByName matches case-insensitively; the CSV importer resolves anganwadis
// by the name column.
func (r *anganwadiRepository) GetByName(ctx context.Context, name string) (models.Anganwadi, error) {
	var anganwadi models.Anganwadi
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&anganwadi).Error; err != nil {
		return models.Anganwadi{}, err
	}

	return anganwadi, nil
}

// Update saves the record and, when member id lists are provided, replaces
// the current teacher/student assignments with them.
func (r *anganwadiRepository) Update(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(anganwadi).Error; err != nil {
			return err
		}

		if teacherIDs != nil {
			if err := tx.Model(&models.Teacher{}).
				Where("anganwadi_id = ?", anganwadi.ID).
				Update("anganwadi_id", nil).Error; err != nil {
				return err
			}
		}
		if studentIDs != nil {
			if err := tx.Model(&models.Student{}).
				Where("anganwadi_id = ?", anganwadi.ID).
				Update("anganwadi_id", nil).Error; err != nil {
				return err
			}
		}

		return assignMembers(tx, anganwadi.ID, teacherIDs, studentIDs)
	})
}

func (r *anganwadiRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Anganwadi{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FilterExistingIDs returns the subset of ids that refer to real anganwadis.
func (r *anganwadiRepository) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var existing []string
	if err := r.db.WithContext(ctx).Model(&models.Anganwadi{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error; err != nil {
		return nil, err
	}

	return existing, nil
}

func assignMembers(tx *gorm.DB, anganwadiID string, teacherIDs, studentIDs []string) error {
	if len(teacherIDs) > 0 {
		if err := tx.Model(&models.Teacher{}).
			Where("id IN ?", teacherIDs).
			Update("anganwadi_id", anganwadiID).Error; err != nil {
			return err
		}
	}

	if len(studentIDs) > 0 {
		if err := tx.Model(&models.Student{}).
			Where("id IN ?", studentIDs).
			Update("anganwadi_id", anganwadiID).Error; err != nil {
			return err
		}
	}

	return nil
}
