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

// ErrAnganwadiNotFound indicates the anganwadi does not exist.
var ErrAnganwadiNotFound = errors.New("anganwadi not found")

// ErrAnganwadiHasMembers blocks deleting an anganwadi that still has
// teachers or students assigned.
var ErrAnganwadiHasMembers = errors.New("anganwadi still has assigned teachers or students")

// AnganwadiService manages anganwadi centers and their member assignments.
type AnganwadiService interface {
	Create(ctx context.Context, payload dto.AnganwadiCreateRequest) (dto.AnganwadiResponse, error)
	List(ctx context.Context) ([]dto.AnganwadiResponse, error)
	GetByID(ctx context.Context, id string) (dto.AnganwadiResponse, error)
	Update(ctx context.Context, id string, payload dto.AnganwadiUpdateRequest) (dto.AnganwadiResponse, error)
	Delete(ctx context.Context, id string) error
}

type anganwadiService struct {
	anganwadis repository.AnganwadiRepository
	teachers   repository.TeacherRepository
	students   repository.StudentRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewAnganwadiService constructs an AnganwadiService instance.
func NewAnganwadiService(
	anganwadis repository.AnganwadiRepository,
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AnganwadiService {
	return &anganwadiService{
		anganwadis: anganwadis,
		teachers:   teachers,
		students:   students,
		validator:  validate,
		logger:     logger.With().Str("component", "anganwadi_service").Logger(),
	}
}

func (s *anganwadiService) Create(ctx context.Context, payload dto.AnganwadiCreateRequest) (dto.AnganwadiResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnganwadiResponse{}, err
	}

	teacherIDs, err := s.teachers.FilterExistingIDs(ctx, payload.TeacherIDs)
	if err != nil {
		return dto.AnganwadiResponse{}, err
	}
	studentIDs, err := s.students.FilterExistingIDs(ctx, payload.StudentIDs)
	if err != nil {
		return dto.AnganwadiResponse{}, err
	}

	anganwadi := models.Anganwadi{
		Name:     payload.Name,
		Location: payload.Location,
		District: payload.District,
		State:    payload.State,
	}
	if err := s.anganwadis.Create(ctx, &anganwadi, teacherIDs, studentIDs); err != nil {
		return dto.AnganwadiResponse{}, err
	}

	s.logger.Info().Str("anganwadi_id", anganwadi.ID).Str("name", anganwadi.Name).Msg("anganwadi created")

	return s.GetByID(ctx, anganwadi.ID)
}

func (s *anganwadiService) List(ctx context.Context) ([]dto.AnganwadiResponse, error) {
	anganwadis, err := s.anganwadis.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AnganwadiResponse, 0, len(anganwadis))
	for _, anganwadi := range anganwadis {
		responses = append(responses, dto.NewAnganwadiResponse(anganwadi))
	}

	return responses, nil
}

func (s *anganwadiService) GetByID(ctx context.Context, id string) (dto.AnganwadiResponse, error) {
	anganwadi, err := s.anganwadis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnganwadiResponse{}, ErrAnganwadiNotFound
		}
		return dto.AnganwadiResponse{}, err
	}

	return dto.NewAnganwadiResponse(anganwadi), nil
}

// Update modifies the anganwadi; non-nil member lists replace the current
// assignments.
func (s *anganwadiService) Update(ctx context.Context, id string, payload dto.AnganwadiUpdateRequest) (dto.AnganwadiResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnganwadiResponse{}, err
	}

	anganwadi, err := s.anganwadis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnganwadiResponse{}, ErrAnganwadiNotFound
		}
		return dto.AnganwadiResponse{}, err
	}

	if payload.Name != nil {
		anganwadi.Name = *payload.Name
	}
	if payload.Location != nil {
		anganwadi.Location = *payload.Location
	}
	if payload.District != nil {
		anganwadi.District = *payload.District
	}
	if payload.State != nil {
		anganwadi.State = *payload.State
	}

	var teacherIDs, studentIDs []string
	if payload.TeacherIDs != nil {
		teacherIDs, err = s.teachers.FilterExistingIDs(ctx, payload.TeacherIDs)
		if err != nil {
			return dto.AnganwadiResponse{}, err
		}
		if teacherIDs == nil {
			teacherIDs = []string{}
		}
	}
	if payload.StudentIDs != nil {
		studentIDs, err = s.students.FilterExistingIDs(ctx, payload.StudentIDs)
		if err != nil {
			return dto.AnganwadiResponse{}, err
		}
		if studentIDs == nil {
			studentIDs = []string{}
		}
	}

	if err := s.anganwadis.Update(ctx, &anganwadi, teacherIDs, studentIDs); err != nil {
		return dto.AnganwadiResponse{}, err
	}

	return s.GetByID(ctx, id)
}

func (s *anganwadiService) Delete(ctx context.Context, id string) error {
	anganwadi, err := s.anganwadis.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnganwadiNotFound
		}
		return err
	}

	if len(anganwadi.Teachers) > 0 || len(anganwadi.Students) > 0 {
		return ErrAnganwadiHasMembers
	}

	return s.anganwadis.Delete(ctx, id)
}
