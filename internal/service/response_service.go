package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ResponseService records and reads individual student responses on the
// legacy evaluation path. Submission-scoped responses are written through
// AssessmentService instead.
type ResponseService interface {
	Create(ctx context.Context, payload dto.ResponseCreateRequest) (dto.StudentResponseResponse, error)
	CreateBatch(ctx context.Context, payload dto.ResponseBatchCreateRequest) ([]dto.StudentResponseResponse, error)
	GetByID(ctx context.Context, id string) (dto.StudentResponseResponse, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.StudentResponseResponse, error)
	ListByEvaluation(ctx context.Context, evaluationID string) ([]dto.StudentResponseResponse, error)
}

type responseService struct {
	responses   repository.ResponseRepository
	evaluations repository.EvaluationRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewResponseService constructs a ResponseService instance.
func NewResponseService(
	responses repository.ResponseRepository,
	evaluations repository.EvaluationRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ResponseService {
	return &responseService{
		responses:   responses,
		evaluations: evaluations,
		validator:   validate,
		logger:      logger.With().Str("component", "response_service").Logger(),
	}
}

func (s *responseService) Create(ctx context.Context, payload dto.ResponseCreateRequest) (dto.StudentResponseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	if _, err := s.evaluations.GetByID(ctx, payload.EvaluationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponseResponse{}, ErrEvaluationNotFound
		}
		return dto.StudentResponseResponse{}, err
	}

	response := models.StudentResponse{
		EvaluationID: &payload.EvaluationID,
		QuestionID:   payload.QuestionID,
		StudentID:    payload.StudentID,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		AudioURL:     payload.AudioURL,
	}
	if err := s.responses.Create(ctx, &response); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	return dto.NewStudentResponseResponse(response), nil
}

func (s *responseService) CreateBatch(ctx context.Context, payload dto.ResponseBatchCreateRequest) ([]dto.StudentResponseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	responses := make([]models.StudentResponse, 0, len(payload.Responses))
	for _, item := range payload.Responses {
		evaluationID := item.EvaluationID
		responses = append(responses, models.StudentResponse{
			EvaluationID: &evaluationID,
			QuestionID:   item.QuestionID,
			StudentID:    item.StudentID,
			StartTime:    item.StartTime,
			EndTime:      item.EndTime,
			AudioURL:     item.AudioURL,
		})
	}

	if err := s.responses.CreateBatch(ctx, responses); err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(responses)).Msg("response batch recorded")

	results := make([]dto.StudentResponseResponse, 0, len(responses))
	for _, response := range responses {
		results = append(results, dto.NewStudentResponseResponse(response))
	}

	return results, nil
}

func (s *responseService) GetByID(ctx context.Context, id string) (dto.StudentResponseResponse, error) {
	response, err := s.responses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponseResponse{}, ErrResponseNotFound
		}
		return dto.StudentResponseResponse{}, err
	}

	return dto.NewStudentResponseResponse(response), nil
}

func (s *responseService) ListByStudent(ctx context.Context, studentID string) ([]dto.StudentResponseResponse, error) {
	responses, err := s.responses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	results := make([]dto.StudentResponseResponse, 0, len(responses))
	for _, response := range responses {
		results = append(results, dto.NewStudentResponseResponse(response))
	}

	return results, nil
}

func (s *responseService) ListByEvaluation(ctx context.Context, evaluationID string) ([]dto.StudentResponseResponse, error) {
	responses, err := s.responses.ListByEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	results := make([]dto.StudentResponseResponse, 0, len(responses))
	for _, response := range responses {
		results = append(results, dto.NewStudentResponseResponse(response))
	}

	return results, nil
}
