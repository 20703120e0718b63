package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrEvaluationNotFound indicates the evaluation does not exist.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// EvaluationService covers the legacy teacher-administered assessment path:
// an evaluation carries its own audio recording and holds responses directly
// instead of through a student submission.
type EvaluationService interface {
	Create(ctx context.Context, payload dto.EvaluationCreateRequest, audioPath, metadataPath string) (dto.EvaluationResponse, error)
	SubmitBatch(ctx context.Context, payload dto.EvaluationBatchRequest) (dto.EvaluationResponse, error)
	List(ctx context.Context) ([]dto.EvaluationResponse, error)
	GetByID(ctx context.Context, id string) (dto.EvaluationResponse, error)
	MarkGraded(ctx context.Context, id string) (dto.EvaluationResponse, error)
}

type evaluationService struct {
	evaluations repository.EvaluationRepository
	responses   repository.ResponseRepository
	uploader    FileUploader
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEvaluationService constructs an EvaluationService instance.
func NewEvaluationService(
	evaluations repository.EvaluationRepository,
	responses repository.ResponseRepository,
	uploader FileUploader,
	validate *validator.Validate,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		evaluations: evaluations,
		responses:   responses,
		uploader:    uploader,
		validator:   validate,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		now:         time.Now,
	}
}

// Create uploads the recorded audio (and optional metadata file), then writes
// the evaluation row. Temp files are removed whether or not the upload or the
// write succeeds.
func (s *evaluationService) Create(ctx context.Context, payload dto.EvaluationCreateRequest, audioPath, metadataPath string) (dto.EvaluationResponse, error) {
	defer removeTempFile(s.logger, audioPath)
	defer removeTempFile(s.logger, metadataPath)

	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	var audioURL string
	if audioPath != "" {
		url, err := s.uploader.UploadFile(ctx, audioPath, "audio")
		if err != nil {
			return dto.EvaluationResponse{}, err
		}
		audioURL = url
	}

	var metadataURL string
	if metadataPath != "" {
		url, err := s.uploader.UploadFile(ctx, metadataPath, "metadata")
		if err != nil {
			return dto.EvaluationResponse{}, err
		}
		metadataURL = url
	}

	now := s.now()
	evaluation := models.Evaluation{
		TeacherID:   payload.TeacherID,
		StudentID:   payload.StudentID,
		TopicID:     payload.TopicID,
		WeekNumber:  payload.WeekNumber,
		AudioURL:    audioURL,
		MetadataURL: metadataURL,
		Status:      models.EvaluationStatusSubmitted,
		SubmittedAt: &now,
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		return dto.EvaluationResponse{}, err
	}

	s.logger.Info().
		Str("evaluation_id", evaluation.ID).
		Str("teacher_id", evaluation.TeacherID).
		Str("student_id", evaluation.StudentID).
		Msg("evaluation recorded")

	return dto.NewEvaluationResponse(evaluation), nil
}

// SubmitBatch writes the evaluation and all its responses in one transaction.
func (s *evaluationService) SubmitBatch(ctx context.Context, payload dto.EvaluationBatchRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	now := s.now()
	evaluation := models.Evaluation{
		TeacherID:           payload.TeacherID,
		StudentID:           payload.StudentID,
		TopicID:             payload.TopicID,
		AssessmentSessionID: payload.AssessmentSessionID,
		WeekNumber:          payload.WeekNumber,
		AudioURL:            payload.AudioURL,
		MetadataURL:         payload.MetadataURL,
		Status:              models.EvaluationStatusSubmitted,
		SubmittedAt:         &now,
	}

	responses := make([]models.StudentResponse, 0, len(payload.Responses))
	for _, item := range payload.Responses {
		responses = append(responses, models.StudentResponse{
			QuestionID:  item.QuestionID,
			StudentID:   payload.StudentID,
			StartTime:   item.StartTime,
			EndTime:     item.EndTime,
			AudioURL:    item.AudioURL,
			MetadataURL: item.MetadataURL,
		})
	}

	if err := s.evaluations.CreateWithResponses(ctx, &evaluation, responses); err != nil {
		return dto.EvaluationResponse{}, err
	}

	s.logger.Info().
		Str("evaluation_id", evaluation.ID).
		Int("response_count", len(responses)).
		Msg("evaluation batch submitted")

	return s.GetByID(ctx, evaluation.ID)
}

func (s *evaluationService) List(ctx context.Context) ([]dto.EvaluationResponse, error) {
	evaluations, err := s.evaluations.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, dto.NewEvaluationResponse(evaluation))
	}

	return responses, nil
}

func (s *evaluationService) GetByID(ctx context.Context, id string) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

// MarkGraded flips the evaluation to GRADED once every response has a score.
func (s *evaluationService) MarkGraded(ctx context.Context, id string) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	responses, err := s.responses.ListByEvaluation(ctx, id)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	graded := true
	for _, response := range responses {
		if response.CurrentScore() == nil {
			graded = false
			break
		}
	}

	evaluation.GradingComplete = graded
	if graded {
		evaluation.Status = models.EvaluationStatusGraded
	}
	if err := s.evaluations.Update(ctx, &evaluation); err != nil {
		return dto.EvaluationResponse{}, err
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

func removeTempFile(logger zerolog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove temp upload file")
	}
}
