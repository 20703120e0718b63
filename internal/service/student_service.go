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

// StudentService manages student records.
type StudentService interface {
	Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (dto.StudentResponse, error)
	ListActiveByAnganwadi(ctx context.Context, anganwadiID string) ([]dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
}

type studentService struct {
	students   repository.StudentRepository
	anganwadis repository.AnganwadiRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(
	students repository.StudentRepository,
	anganwadis repository.AnganwadiRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		students:   students,
		anganwadis: anganwadis,
		validator:  validate,
		logger:     logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if payload.AnganwadiID != nil {
		if _, err := s.anganwadis.GetByID(ctx, *payload.AnganwadiID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, ErrAnganwadiNotFound
			}
			return dto.StudentResponse{}, err
		}
	}

	status := payload.Status
	if status == "" {
		status = models.StudentStatusActive
	}

	student := models.Student{
		Name:        payload.Name,
		Gender:      payload.Gender,
		Status:      status,
		AnganwadiID: payload.AnganwadiID,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Str("student_id", student.ID).Msg("student created")

	return s.GetByID(ctx, student.ID)
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) ListActiveByAnganwadi(ctx context.Context, anganwadiID string) ([]dto.StudentResponse, error) {
	students, err := s.students.ListActiveByAnganwadi(ctx, anganwadiID)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := s.students.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	return s.students.Delete(ctx, id)
}
