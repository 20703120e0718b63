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

// ErrCohortHasTeachers blocks deleting a cohort that still has teachers.
var ErrCohortHasTeachers = errors.New("cohort still has assigned teachers")

// CohortService manages cohorts, the grouping used for teacher rankings.
type CohortService interface {
	Create(ctx context.Context, payload dto.CohortCreateRequest) (dto.CohortResponse, error)
	List(ctx context.Context) ([]dto.CohortResponse, error)
	GetByID(ctx context.Context, id string) (dto.CohortResponse, error)
	ListAssessments(ctx context.Context, id string) ([]dto.AssessmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type cohortService struct {
	cohorts     repository.CohortRepository
	teachers    repository.TeacherRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewCohortService constructs a CohortService instance.
func NewCohortService(
	cohorts repository.CohortRepository,
	teachers repository.TeacherRepository,
	assessments repository.AssessmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) CohortService {
	return &cohortService{
		cohorts:     cohorts,
		teachers:    teachers,
		assessments: assessments,
		validator:   validate,
		logger:      logger.With().Str("component", "cohort_service").Logger(),
	}
}

func (s *cohortService) Create(ctx context.Context, payload dto.CohortCreateRequest) (dto.CohortResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CohortResponse{}, err
	}

	teacherIDs, err := s.teachers.FilterExistingIDs(ctx, payload.TeacherIDs)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	cohort := models.Cohort{
		Name:   payload.Name,
		Region: payload.Region,
	}
	if err := s.cohorts.Create(ctx, &cohort, teacherIDs); err != nil {
		return dto.CohortResponse{}, err
	}

	s.logger.Info().Str("cohort_id", cohort.ID).Str("name", cohort.Name).Msg("cohort created")

	return s.GetByID(ctx, cohort.ID)
}

func (s *cohortService) List(ctx context.Context) ([]dto.CohortResponse, error) {
	cohorts, err := s.cohorts.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CohortResponse, 0, len(cohorts))
	for _, cohort := range cohorts {
		responses = append(responses, dto.NewCohortResponse(cohort))
	}

	return responses, nil
}

func (s *cohortService) GetByID(ctx context.Context, id string) (dto.CohortResponse, error) {
	cohort, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CohortResponse{}, ErrCohortNotFound
		}
		return dto.CohortResponse{}, err
	}

	return dto.NewCohortResponse(cohort), nil
}

// ListAssessments returns every session whose anganwadi set touches an
// anganwadi one of the cohort's teachers is assigned to.
func (s *cohortService) ListAssessments(ctx context.Context, id string) ([]dto.AssessmentResponse, error) {
	if _, err := s.cohorts.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCohortNotFound
		}
		return nil, err
	}

	teachers, err := s.teachers.ListByCohort(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var anganwadiIDs []string
	for _, teacher := range teachers {
		if teacher.AnganwadiID == nil {
			continue
		}
		if _, ok := seen[*teacher.AnganwadiID]; ok {
			continue
		}
		seen[*teacher.AnganwadiID] = struct{}{}
		anganwadiIDs = append(anganwadiIDs, *teacher.AnganwadiID)
	}

	sessions, err := s.assessments.ListForAnganwadis(ctx, anganwadiIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssessmentResponse, 0, len(sessions))
	for _, session := range sessions {
		response := dto.NewAssessmentResponse(session)
		stats := dto.NewAssessmentStats(session.AnganwadiAssessments)
		response.Stats = &stats
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *cohortService) Delete(ctx context.Context, id string) error {
	cohort, err := s.cohorts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCohortNotFound
		}
		return err
	}

	if len(cohort.Teachers) > 0 {
		return ErrCohortHasTeachers
	}

	return s.cohorts.Delete(ctx, id)
}
