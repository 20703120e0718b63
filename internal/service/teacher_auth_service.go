package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/otp"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrInvalidOTP indicates the supplied code does not match the pending OTP.
var ErrInvalidOTP = errors.New("invalid or expired otp")

// ErrTeacherNotAssigned indicates the teacher has no anganwadi yet and so
// cannot use the mobile app.
var ErrTeacherNotAssigned = errors.New("teacher is not assigned to an anganwadi")

// SMSSender delivers a message to a phone number. Implemented by pkg/sms.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// TeacherAuthService runs the teacher phone login flow: request an OTP by
// phone number, verify it, receive a token. Outside production any OTP value
// is accepted, so mobile builds can be tested without an SMS channel.
type TeacherAuthService interface {
	RequestOTP(ctx context.Context, payload dto.OTPRequest) (dto.OTPRequestResponse, error)
	VerifyOTP(ctx context.Context, payload dto.OTPVerifyRequest) (dto.TeacherLoginResponse, error)
	Profile(ctx context.Context, teacherID string) (dto.TeacherProfileResponse, error)
	Anganwadi(ctx context.Context, teacherID string) (dto.TeacherAnganwadiResponse, error)
}

type teacherAuthService struct {
	teachers    repository.TeacherRepository
	students    repository.StudentRepository
	assessments repository.AssessmentRepository
	otps        otp.Store
	sms         SMSSender
	validator   *validator.Validate
	logger      zerolog.Logger
	jwtSecret   string
	tokenTTL    time.Duration
	production  bool
	now         func() time.Time
}

// NewTeacherAuthService constructs a TeacherAuthService instance. When
// production is false, OTP verification accepts any code and the issued OTP
// is echoed back in the request response.
func NewTeacherAuthService(
	teachers repository.TeacherRepository,
	students repository.StudentRepository,
	assessments repository.AssessmentRepository,
	otps otp.Store,
	sender SMSSender,
	validate *validator.Validate,
	logger zerolog.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
	production bool,
) TeacherAuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}

	return &teacherAuthService{
		teachers:    teachers,
		students:    students,
		assessments: assessments,
		otps:        otps,
		sms:         sender,
		validator:   validate,
		logger:      logger.With().Str("component", "teacher_auth_service").Logger(),
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		production:  production,
		now:         time.Now,
	}
}

func (s *teacherAuthService) RequestOTP(ctx context.Context, payload dto.OTPRequest) (dto.OTPRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OTPRequestResponse{}, err
	}

	teacher, err := s.teachers.GetByPhone(ctx, payload.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OTPRequestResponse{}, ErrTeacherNotFound
		}
		return dto.OTPRequestResponse{}, err
	}
	if teacher.AnganwadiID == nil {
		return dto.OTPRequestResponse{}, ErrTeacherNotAssigned
	}

	code, err := otp.GenerateCode(6)
	if err != nil {
		return dto.OTPRequestResponse{}, err
	}

	expiresAt, err := s.otps.Put(ctx, payload.Phone, code)
	if err != nil {
		return dto.OTPRequestResponse{}, err
	}

	// Delivery is fire-and-forget: a failed SMS is logged but does not
	// invalidate the stored OTP. The sender is optional outside production.
	if s.sms != nil {
		if err := s.sms.Send(ctx, payload.Phone, fmt.Sprintf("Your Kanasu login code is %s", code)); err != nil {
			s.logger.Warn().Err(err).Str("phone", payload.Phone).Msg("otp sms delivery failed")
		}
	}

	response := dto.OTPRequestResponse{
		PhoneNumber: payload.Phone,
		ExpiresAt:   expiresAt,
	}
	if !s.production {
		response.OTP = code
	}

	return response, nil
}

func (s *teacherAuthService) VerifyOTP(ctx context.Context, payload dto.OTPVerifyRequest) (dto.TeacherLoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherLoginResponse{}, err
	}

	teacher, err := s.teachers.GetByPhone(ctx, payload.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherLoginResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherLoginResponse{}, err
	}
	if teacher.AnganwadiID == nil {
		return dto.TeacherLoginResponse{}, ErrTeacherNotAssigned
	}

	if s.production {
		stored, err := s.otps.Get(ctx, payload.Phone)
		if err != nil {
			if errors.Is(err, otp.ErrNotFound) {
				return dto.TeacherLoginResponse{}, ErrInvalidOTP
			}
			return dto.TeacherLoginResponse{}, err
		}
		if stored != payload.OTP {
			return dto.TeacherLoginResponse{}, ErrInvalidOTP
		}
	}

	if err := s.otps.Delete(ctx, payload.Phone); err != nil {
		s.logger.Warn().Err(err).Str("phone", payload.Phone).Msg("failed to clear verified otp")
	}

	if !teacher.IsVerified {
		teacher.IsVerified = true
		if err := s.teachers.Update(ctx, &teacher); err != nil {
			return dto.TeacherLoginResponse{}, err
		}
	}

	token, err := s.issueToken(teacher)
	if err != nil {
		return dto.TeacherLoginResponse{}, err
	}

	s.logger.Info().Str("teacher_id", teacher.ID).Msg("teacher logged in")

	response := dto.TeacherLoginResponse{
		Token:   token,
		Teacher: dto.TeacherLite{ID: teacher.ID, Name: teacher.Name, Phone: teacher.Phone},
	}
	if teacher.Anganwadi != nil {
		response.Anganwadi = &dto.AnganwadiLite{
			ID:       teacher.Anganwadi.ID,
			Name:     teacher.Anganwadi.Name,
			Location: teacher.Anganwadi.Location,
			District: teacher.Anganwadi.District,
			State:    teacher.Anganwadi.State,
		}
	}

	return response, nil
}

func (s *teacherAuthService) issueToken(teacher models.Teacher) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  teacher.ID,
		"role": models.RoleTeacher,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	if teacher.AnganwadiID != nil {
		claims["anganwadi_id"] = *teacher.AnganwadiID
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// Profile returns the authenticated teacher's own view: their record, their
// anganwadi, and its active students.
func (s *teacherAuthService) Profile(ctx context.Context, teacherID string) (dto.TeacherProfileResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherProfileResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherProfileResponse{}, err
	}

	if teacher.AnganwadiID == nil || teacher.Anganwadi == nil {
		return dto.TeacherProfileResponse{}, ErrTeacherNotAssigned
	}

	students, err := s.students.ListActiveByAnganwadi(ctx, *teacher.AnganwadiID)
	if err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	profile := dto.TeacherProfileResponse{
		Teacher: dto.TeacherLite{ID: teacher.ID, Name: teacher.Name, Phone: teacher.Phone},
		Anganwadi: dto.AnganwadiLite{
			ID:       teacher.Anganwadi.ID,
			Name:     teacher.Anganwadi.Name,
			Location: teacher.Anganwadi.Location,
			District: teacher.Anganwadi.District,
			State:    teacher.Anganwadi.State,
		},
		Students: make([]dto.StudentLite, 0, len(students)),
	}
	for _, student := range students {
		profile.Students = append(profile.Students, dto.StudentLite{
			ID:     student.ID,
			Name:   student.Name,
			Gender: student.Gender,
			Status: student.Status,
		})
	}

	return profile, nil
}

// Anganwadi returns the teacher's anganwadi and the published sessions whose
// window currently covers it, each carrying its completion tracker.
func (s *teacherAuthService) Anganwadi(ctx context.Context, teacherID string) (dto.TeacherAnganwadiResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherAnganwadiResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherAnganwadiResponse{}, err
	}

	if teacher.AnganwadiID == nil || teacher.Anganwadi == nil {
		return dto.TeacherAnganwadiResponse{}, ErrTeacherNotAssigned
	}

	sessions, err := s.assessments.ListActiveForAnganwadi(ctx, *teacher.AnganwadiID, s.now())
	if err != nil {
		return dto.TeacherAnganwadiResponse{}, err
	}

	response := dto.TeacherAnganwadiResponse{
		Anganwadi: dto.AnganwadiLite{
			ID:       teacher.Anganwadi.ID,
			Name:     teacher.Anganwadi.Name,
			Location: teacher.Anganwadi.Location,
			District: teacher.Anganwadi.District,
			State:    teacher.Anganwadi.State,
		},
		ActiveAssessments: make([]dto.AssessmentResponse, 0, len(sessions)),
	}
	for _, session := range sessions {
		response.ActiveAssessments = append(response.ActiveAssessments, dto.NewAssessmentResponse(session))
	}

	return response, nil
}
