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

// ErrTeacherNotFound indicates the teacher does not exist.
var ErrTeacherNotFound = errors.New("teacher not found")

// ErrPhoneAlreadyRegistered indicates another teacher already uses the phone
// number.
var ErrPhoneAlreadyRegistered = errors.New("phone number already registered")

// ErrAnganwadiHasTeacher enforces the one-teacher-per-anganwadi rule.
var ErrAnganwadiHasTeacher = errors.New("anganwadi already has an assigned teacher")

// ErrCohortNotFound indicates the cohort does not exist.
var ErrCohortNotFound = errors.New("cohort not found")

// TeacherService manages teacher records and their cohort and anganwadi
// assignments.
type TeacherService interface {
	Create(ctx context.Context, payload dto.TeacherCreateRequest) (dto.TeacherResponse, error)
	List(ctx context.Context) ([]dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (dto.TeacherResponse, error)
	ListByAnganwadi(ctx context.Context, ref string) ([]dto.TeacherResponse, error)
	AssignCohort(ctx context.Context, payload dto.TeacherAssignCohortRequest) (dto.TeacherResponse, error)
	AssignAnganwadi(ctx context.Context, payload dto.TeacherAssignAnganwadiRequest) (dto.TeacherResponse, error)
	Delete(ctx context.Context, id string) error
}

type teacherService struct {
	teachers   repository.TeacherRepository
	anganwadis repository.AnganwadiRepository
	cohorts    repository.CohortRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(
	teachers repository.TeacherRepository,
	anganwadis repository.AnganwadiRepository,
	cohorts repository.CohortRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) TeacherService {
	return &teacherService{
		teachers:   teachers,
		anganwadis: anganwadis,
		cohorts:    cohorts,
		validator:  validate,
		logger:     logger.With().Str("component", "teacher_service").Logger(),
	}
}

func (s *teacherService) Create(ctx context.Context, payload dto.TeacherCreateRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherResponse{}, err
	}

	if _, err := s.teachers.GetByPhone(ctx, payload.Phone); err == nil {
		return dto.TeacherResponse{}, ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeacherResponse{}, err
	}

	if payload.AnganwadiID != nil {
		if err := s.checkAnganwadiFree(ctx, *payload.AnganwadiID, ""); err != nil {
			return dto.TeacherResponse{}, err
		}
	}

	teacher := models.Teacher{
		Name:        payload.Name,
		Phone:       payload.Phone,
		CohortID:    payload.CohortID,
		AnganwadiID: payload.AnganwadiID,
	}
	if err := s.teachers.Create(ctx, &teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TeacherResponse{}, ErrPhoneAlreadyRegistered
		}
		return dto.TeacherResponse{}, err
	}

	s.logger.Info().Str("teacher_id", teacher.ID).Msg("teacher created")

	return s.GetByID(ctx, teacher.ID)
}

// checkAnganwadiFree fails when the anganwadi already has a teacher other
// than excludeTeacherID assigned.
func (s *teacherService) checkAnganwadiFree(ctx context.Context, anganwadiID, excludeTeacherID string) error {
	anganwadi, err := s.anganwadis.GetByID(ctx, anganwadiID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnganwadiNotFound
		}
		return err
	}

	for _, assigned := range anganwadi.Teachers {
		if assigned.ID != excludeTeacherID {
			return ErrAnganwadiHasTeacher
		}
	}

	return nil
}

func (s *teacherService) List(ctx context.Context) ([]dto.TeacherResponse, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TeacherResponse, 0, len(teachers))
	for _, teacher := range teachers {
		responses = append(responses, dto.NewTeacherResponse(teacher))
	}

	return responses, nil
}

func (s *teacherService) GetByID(ctx context.Context, id string) (dto.TeacherResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherResponse{}, err
	}

	return dto.NewTeacherResponse(teacher), nil
}

// ListByAnganwadi accepts either an anganwadi id or its exact name, so the
// mobile app can look teachers up by the human-readable center name.
func (s *teacherService) ListByAnganwadi(ctx context.Context, ref string) ([]dto.TeacherResponse, error) {
	anganwadi, err := s.anganwadis.GetByID(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		anganwadi, err = s.anganwadis.GetByName(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnganwadiNotFound
		}
		return nil, err
	}

	teachers, err := s.teachers.ListByAnganwadi(ctx, anganwadi.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TeacherResponse, 0, len(teachers))
	for _, teacher := range teachers {
		responses = append(responses, dto.NewTeacherResponse(teacher))
	}

	return responses, nil
}

func (s *teacherService) AssignCohort(ctx context.Context, payload dto.TeacherAssignCohortRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherResponse{}, err
	}

	teacher, err := s.teachers.GetByID(ctx, payload.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherResponse{}, err
	}

	if _, err := s.cohorts.GetByID(ctx, payload.CohortID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherResponse{}, ErrCohortNotFound
		}
		return dto.TeacherResponse{}, err
	}

	teacher.CohortID = &payload.CohortID
	if err := s.teachers.Update(ctx, &teacher); err != nil {
		return dto.TeacherResponse{}, err
	}

	return s.GetByID(ctx, teacher.ID)
}

func (s *teacherService) AssignAnganwadi(ctx context.Context, payload dto.TeacherAssignAnganwadiRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherResponse{}, err
	}

	teacher, err := s.teachers.GetByID(ctx, payload.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherResponse{}, err
	}

	if err := s.checkAnganwadiFree(ctx, payload.AnganwadiID, teacher.ID); err != nil {
		return dto.TeacherResponse{}, err
	}

	teacher.AnganwadiID = &payload.AnganwadiID
	if err := s.teachers.Update(ctx, &teacher); err != nil {
		return dto.TeacherResponse{}, err
	}

	return s.GetByID(ctx, teacher.ID)
}

func (s *teacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.teachers.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	return s.teachers.Delete(ctx, id)
}
