package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrAssessmentNotFound indicates the assessment session does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrAssessmentNotActive indicates the session no longer accepts submissions.
var ErrAssessmentNotActive = errors.New("assessment is not active")

// ErrNoAnganwadisFound indicates the request resolved to an empty anganwadi set.
var ErrNoAnganwadisFound = errors.New("no anganwadis found")

// ErrAnganwadiNotInAssessment indicates the anganwadi has no tracker for the session.
var ErrAnganwadiNotInAssessment = errors.New("this anganwadi is not part of this assessment")

// ErrStudentNotFound indicates the student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrStudentNotActive indicates the student is not currently enrolled.
var ErrStudentNotActive = errors.New("student is not active")

// ErrStudentNotInAnganwadi indicates the student belongs to a different anganwadi.
var ErrStudentNotInAnganwadi = errors.New("student does not belong to this anganwadi")

// ErrAlreadySubmitted indicates a submission already exists for this student and session.
var ErrAlreadySubmitted = errors.New("student has already submitted for this assessment")

// ErrOnlyDraftPublishable guards the DRAFT -> PUBLISHED transition.
var ErrOnlyDraftPublishable = errors.New("only draft assessments can be published")

// ErrOnlyPublishedCompletable guards the PUBLISHED -> COMPLETED transition.
var ErrOnlyPublishedCompletable = errors.New("only published assessments can be completed")

// ErrAssessmentHasSubmissions blocks deleting a session that students already submitted to.
var ErrAssessmentHasSubmissions = errors.New("cannot delete assessment with recorded submissions")

// AssessmentService orchestrates the assessment session lifecycle: creation
// with per-anganwadi fan-out, publish/complete transitions, and submission
// recording with completion-counter maintenance.
type AssessmentService interface {
	Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	List(ctx context.Context) ([]dto.AssessmentResponse, error)
	GetByID(ctx context.Context, id string) (dto.AssessmentResponse, error)
	ListActiveForAnganwadi(ctx context.Context, anganwadiID string) ([]dto.AssessmentResponse, error)
	Publish(ctx context.Context, id string) (dto.AssessmentResponse, error)
	Complete(ctx context.Context, id string) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, id string) error
	ListSubmissions(ctx context.Context, assessmentID, anganwadiID string) ([]dto.StudentSubmissionResponse, error)
	RecordSubmission(ctx context.Context, assessmentID, studentID string, payload dto.RecordSubmissionRequest) (dto.StudentSubmissionResponse, dto.AnganwadiAssessmentResponse, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	anganwadis  repository.AnganwadiRepository
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	topics      repository.TopicRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssessmentService constructs an AssessmentService instance.
func NewAssessmentService(
	assessments repository.AssessmentRepository,
	anganwadis repository.AnganwadiRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	topics repository.TopicRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		anganwadis:  anganwadis,
		students:    students,
		teachers:    teachers,
		topics:      topics,
		validator:   validate,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		tracer:      otel.Tracer("kanasu-go-api/assessment"),
		now:         time.Now,
	}
}

func (s *assessmentService) Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	anganwadiIDs, err := s.resolveAnganwadis(ctx, payload.AnganwadiIDs, payload.CohortIDs)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	if len(anganwadiIDs) == 0 {
		return dto.AssessmentResponse{}, ErrNoAnganwadisFound
	}

	session := models.AssessmentSession{
		Name:        payload.Name,
		Description: payload.Description,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		IsActive:    true,
		Status:      models.AssessmentStatusDraft,
	}
	if err := session.SetTopicIDs(payload.TopicIDs); err != nil {
		return dto.AssessmentResponse{}, err
	}

	trackers := make([]models.AnganwadiAssessment, 0, len(anganwadiIDs))
	for _, anganwadiID := range anganwadiIDs {
		count, err := s.students.CountActiveByAnganwadi(ctx, anganwadiID)
		if err != nil {
			return dto.AssessmentResponse{}, err
		}

		trackers = append(trackers, models.AnganwadiAssessment{
			AnganwadiID:           anganwadiID,
			TotalStudentCount:     int(count),
			CompletedStudentCount: 0,
			// An anganwadi with no active students has nothing left to do.
			IsComplete: count == 0,
		})
	}

	if err := s.assessments.CreateWithTrackers(ctx, &session, trackers); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().
		Str("assessment_id", session.ID).
		Int("anganwadi_count", len(trackers)).
		Msg("assessment session created")

	response := dto.NewAssessmentResponse(session)
	stats := dto.NewAssessmentStats(session.AnganwadiAssessments)
	response.Stats = &stats
	return response, nil
}

// resolveAnganwadis merges the explicit anganwadi ids with the anganwadis of
// every teacher in the given cohorts, dropping unknown ids and duplicates.
func (s *assessmentService) resolveAnganwadis(ctx context.Context, anganwadiIDs, cohortIDs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var resolved []string

	if len(anganwadiIDs) > 0 {
		existing, err := s.anganwadis.FilterExistingIDs(ctx, anganwadiIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range existing {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				resolved = append(resolved, id)
			}
		}
	}

	for _, cohortID := range cohortIDs {
		teachers, err := s.teachers.ListByCohort(ctx, cohortID)
		if err != nil {
			return nil, err
		}
		for _, teacher := range teachers {
			if teacher.AnganwadiID == nil {
				continue
			}
			if _, ok := seen[*teacher.AnganwadiID]; !ok {
				seen[*teacher.AnganwadiID] = struct{}{}
				resolved = append(resolved, *teacher.AnganwadiID)
			}
		}
	}

	return resolved, nil
}

func (s *assessmentService) List(ctx context.Context) ([]dto.AssessmentResponse, error) {
	sessions, err := s.assessments.List(ctx)
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

func (s *assessmentService) GetByID(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	session, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	response := dto.NewAssessmentResponse(session)
	stats := dto.NewAssessmentStats(session.AnganwadiAssessments)
	response.Stats = &stats

	topics, err := s.topics.ListByIDs(ctx, session.TopicIDList())
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	for _, topic := range topics {
		response.Topics = append(response.Topics, dto.NewTopicResponse(topic))
	}

	return response, nil
}

func (s *assessmentService) ListActiveForAnganwadi(ctx context.Context, anganwadiID string) ([]dto.AssessmentResponse, error) {
	sessions, err := s.assessments.ListActiveForAnganwadi(ctx, anganwadiID, s.now())
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssessmentResponse, 0, len(sessions))
	for _, session := range sessions {
		response := dto.NewAssessmentResponse(session)

		topics, err := s.topics.ListByIDs(ctx, session.TopicIDList())
		if err != nil {
			return nil, err
		}
		for _, topic := range topics {
			response.Topics = append(response.Topics, dto.NewTopicResponse(topic))
		}

		responses = append(responses, response)
	}

	return responses, nil
}

func (s *assessmentService) Publish(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	session, err := s.assessments.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	if session.Status != models.AssessmentStatusDraft {
		return dto.AssessmentResponse{}, ErrOnlyDraftPublishable
	}

	session.Status = models.AssessmentStatusPublished
	if err := s.assessments.UpdateSession(ctx, &session); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Str("assessment_id", session.ID).Msg("assessment published")

	return dto.NewAssessmentResponse(session), nil
}

func (s *assessmentService) Complete(ctx context.Context, id string) (dto.AssessmentResponse, error) {
	session, err := s.assessments.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	if session.Status != models.AssessmentStatusPublished {
		return dto.AssessmentResponse{}, ErrOnlyPublishedCompletable
	}

	if err := s.assessments.CompleteSession(ctx, &session); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Str("assessment_id", session.ID).Msg("assessment completed")

	return dto.NewAssessmentResponse(session), nil
}

func (s *assessmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.assessments.GetSession(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	count, err := s.assessments.CountSessionSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAssessmentHasSubmissions
	}

	return s.assessments.DeleteSession(ctx, id)
}

func (s *assessmentService) ListSubmissions(ctx context.Context, assessmentID, anganwadiID string) ([]dto.StudentSubmissionResponse, error) {
	submissions, err := s.assessments.ListSubmissions(ctx, assessmentID, anganwadiID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewStudentSubmissionResponse(submission))
	}

	return responses, nil
}

func (s *assessmentService) RecordSubmission(ctx context.Context, assessmentID, studentID string, payload dto.RecordSubmissionRequest) (dto.StudentSubmissionResponse, dto.AnganwadiAssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.record_submission", trace.WithAttributes(
		attribute.String("assessment.id", assessmentID),
		attribute.String("assessment.student_id", studentID),
	))
	defer span.End()

	fail := func(status string, err error) (dto.StudentSubmissionResponse, dto.AnganwadiAssessmentResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		return dto.StudentSubmissionResponse{}, dto.AnganwadiAssessmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return fail("validation_failed", err)
	}

	session, err := s.assessments.GetSession(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("assessment_not_found", ErrAssessmentNotFound)
		}
		return fail("assessment_lookup_failed", err)
	}
	if !session.IsActive {
		return fail("assessment_inactive", ErrAssessmentNotActive)
	}

	if _, err := s.assessments.GetTracker(ctx, assessmentID, payload.AnganwadiID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("anganwadi_not_in_assessment", ErrAnganwadiNotInAssessment)
		}
		return fail("tracker_lookup_failed", err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail("student_not_found", ErrStudentNotFound)
		}
		return fail("student_lookup_failed", err)
	}
	if student.Status != models.StudentStatusActive {
		return fail("student_not_active", ErrStudentNotActive)
	}
	if student.AnganwadiID == nil || *student.AnganwadiID != payload.AnganwadiID {
		return fail("student_not_in_anganwadi", ErrStudentNotInAnganwadi)
	}

	// Advisory pre-check; the unique index on (session, student) is what
	// actually closes the race between concurrent submissions.
	if _, err := s.assessments.GetSubmission(ctx, assessmentID, studentID); err == nil {
		return fail("already_submitted", ErrAlreadySubmitted)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail("submission_lookup_failed", err)
	}

	submission := models.StudentSubmission{
		AssessmentSessionID: assessmentID,
		StudentID:           studentID,
		AnganwadiID:         payload.AnganwadiID,
		TeacherID:           payload.TeacherID,
		SubmissionStatus:    models.SubmissionStatusCompleted,
		SubmittedAt:         s.now(),
	}

	responses := make([]models.StudentResponse, 0, len(payload.Responses))
	for _, item := range payload.Responses {
		responses = append(responses, models.StudentResponse{
			QuestionID:   item.QuestionID,
			StudentID:    studentID,
			StartTime:    item.StartTime,
			EndTime:      item.EndTime,
			AudioURL:     item.AudioURL,
			MetadataURL:  item.MetadataURL,
			EvaluationID: item.EvaluationID,
		})
	}

	tracker, err := s.assessments.RecordSubmission(ctx, &submission, responses)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail("already_submitted", ErrAlreadySubmitted)
		}
		return fail("submission_write_failed", err)
	}

	s.logger.Info().
		Str("assessment_id", assessmentID).
		Str("student_id", studentID).
		Int("completed", tracker.CompletedStudentCount).
		Int("total", tracker.TotalStudentCount).
		Bool("anganwadi_complete", tracker.IsComplete).
		Msg("student submission recorded")

	return dto.NewStudentSubmissionResponse(submission), dto.NewAnganwadiAssessmentResponse(tracker), nil
}
