package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// EvaluationRepository defines data operations for legacy evaluations.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.StudentResponse) error
	List(ctx context.Context) ([]models.Evaluation, error)
	GetByID(ctx context.Context, id string) (models.Evaluation, error)
	Update(ctx context.Context, evaluation *models.Evaluation) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

// CreateWithResponses writes the evaluation and its responses atomically,
// the way the teacher app uploads a finished exam in one request.
func (r *evaluationRepository) CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.StudentResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evaluation).Error; err != nil {
			return err
		}

		for i := range responses {
			responses[i].EvaluationID = &evaluation.ID
			if err := tx.Create(&responses[i]).Error; err != nil {
				return err
			}
		}

		evaluation.Responses = responses
		return nil
	})
}

func (r *evaluationRepository) List(ctx context.Context) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		Preload("Topic").
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, id string) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		Preload("Topic").
		Preload("Responses").
		Preload("Responses.Question").
		Preload("Responses.Scores").
		Where("id = ?", id).
		First(&evaluation).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}

func (r *evaluationRepository) Update(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Save(evaluation).Error
}
