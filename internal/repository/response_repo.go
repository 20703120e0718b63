package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// ResponseRepository defines data operations for student responses and their
// append-only score records.
type ResponseRepository interface {
	Create(ctx context.Context, response *models.StudentResponse) error
	CreateBatch(ctx context.Context, responses []models.StudentResponse) error
	GetByID(ctx context.Context, id string) (models.StudentResponse, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentResponse, error)
	ListByEvaluation(ctx context.Context, evaluationID string) ([]models.StudentResponse, error)
	AddScore(ctx context.Context, score *models.StudentResponseScore) error

	ListByAssessmentTeacher(ctx context.Context, assessmentID, teacherID string) ([]models.StudentResponse, error)
	CountByAssessmentAnganwadi(ctx context.Context, assessmentID, anganwadiID string) (int64, error)
	CountByTeacher(ctx context.Context, teacherID string) (int64, error)
	CountGradedByTeacher(ctx context.Context, teacherID string) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository instantiates the repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Preload("Question").
		Preload("Student").
		Preload("Scores", func(db *gorm.DB) *gorm.DB {
			return db.Order("graded_at DESC")
		})
}

func (r *responseRepository) Create(ctx context.Context, response *models.StudentResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

// CreateBatch writes all responses or none of them.
func (r *responseRepository) CreateBatch(ctx context.Context, responses []models.StudentResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range responses {
			if err := tx.Create(&responses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (models.StudentResponse, error) {
	var response models.StudentResponse
	if err := r.baseQuery(ctx).
		Preload("Evaluation").
		Where("id = ?", id).
		First(&response).Error; err != nil {
		return models.StudentResponse{}, err
	}

	return response, nil
}

func (r *responseRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *responseRepository) ListByEvaluation(ctx context.Context, evaluationID string) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	if err := r.baseQuery(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("created_at ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *responseRepository) AddScore(ctx context.Context, score *models.StudentResponseScore) error {
	return r.db.WithContext(ctx).Create(score).Error
}

// ListByAssessmentTeacher returns the responses recorded through the given
// teacher's submissions for one assessment, scores preloaded newest first.
func (r *responseRepository) ListByAssessmentTeacher(ctx context.Context, assessmentID, teacherID string) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Preload("Scores", func(db *gorm.DB) *gorm.DB {
			return db.Order("graded_at DESC")
		}).
		Joins("JOIN student_submissions ON student_submissions.id = student_responses.submission_id").
		Where("student_submissions.assessment_session_id = ?", assessmentID).
		Where("student_submissions.teacher_id = ?", teacherID).
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *responseRepository) CountByAssessmentAnganwadi(ctx context.Context, assessmentID, anganwadiID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Joins("JOIN student_submissions ON student_submissions.id = student_responses.submission_id").
		Where("student_submissions.assessment_session_id = ?", assessmentID).
		Where("student_submissions.anganwadi_id = ?", anganwadiID).
		Count(&count).Error
	return count, err
}

// CountByTeacher counts responses reachable through the teacher's
// submissions plus their legacy evaluations.
func (r *responseRepository) CountByTeacher(ctx context.Context, teacherID string) (int64, error) {
	var viaSubmissions int64
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Joins("JOIN student_submissions ON student_submissions.id = student_responses.submission_id").
		Where("student_submissions.teacher_id = ?", teacherID).
		Count(&viaSubmissions).Error; err != nil {
		return 0, err
	}

	var viaEvaluations int64
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Joins("JOIN evaluations ON evaluations.id = student_responses.evaluation_id").
		Where("evaluations.teacher_id = ?", teacherID).
		Count(&viaEvaluations).Error; err != nil {
		return 0, err
	}

	return viaSubmissions + viaEvaluations, nil
}

func (r *responseRepository) CountGradedByTeacher(ctx context.Context, teacherID string) (int64, error) {
	scored := r.db.Model(&models.StudentResponseScore{}).
		Select("DISTINCT response_id")

	var viaSubmissions int64
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Joins("JOIN student_submissions ON student_submissions.id = student_responses.submission_id").
		Where("student_submissions.teacher_id = ?", teacherID).
		Where("student_responses.id IN (?)", scored).
		Count(&viaSubmissions).Error; err != nil {
		return 0, err
	}

	var viaEvaluations int64
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).
		Joins("JOIN evaluations ON evaluations.id = student_responses.evaluation_id").
		Where("evaluations.teacher_id = ?", teacherID).
		Where("student_responses.id IN (?)", scored).
		Count(&viaEvaluations).Error; err != nil {
		return 0, err
	}

	return viaSubmissions + viaEvaluations, nil
}
