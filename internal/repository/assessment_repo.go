package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// AssessmentRepository defines data operations for assessment sessions,
// their per-anganwadi trackers, and student submissions.
type AssessmentRepository interface {
	CreateWithTrackers(ctx context.Context, session *models.AssessmentSession, trackers []models.AnganwadiAssessment) error
	List(ctx context.Context) ([]models.AssessmentSession, error)
	GetByID(ctx context.Context, id string) (models.AssessmentSession, error)
	GetSession(ctx context.Context, id string) (models.AssessmentSession, error)
	UpdateSession(ctx context.Context, session *models.AssessmentSession) error
	CompleteSession(ctx context.Context, session *models.AssessmentSession) error
	DeleteSession(ctx context.Context, id string) error
	ListActiveForAnganwadi(ctx context.Context, anganwadiID string, now time.Time) ([]models.AssessmentSession, error)
	ListForAnganwadis(ctx context.Context, anganwadiIDs []string) ([]models.AssessmentSession, error)

	GetTracker(ctx context.Context, sessionID, anganwadiID string) (models.AnganwadiAssessment, error)
	GetSubmission(ctx context.Context, sessionID, studentID string) (models.StudentSubmission, error)
	ListSubmissions(ctx context.Context, sessionID, anganwadiID string) ([]models.StudentSubmission, error)
	CountSubmissions(ctx context.Context, sessionID, anganwadiID string) (int64, error)
	CountSessionSubmissions(ctx context.Context, sessionID string) (int64, error)
	RecordSubmission(ctx context.Context, submission *models.StudentSubmission, responses []models.StudentResponse) (models.AnganwadiAssessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// CreateWithTrackers writes the session row and its per-anganwadi trackers
// atomically so a failed fan-out leaves nothing behind.
func (r *assessmentRepository) CreateWithTrackers(ctx context.Context, session *models.AssessmentSession, trackers []models.AnganwadiAssessment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		for i := range trackers {
			trackers[i].AssessmentSessionID = session.ID
			if err := tx.Create(&trackers[i]).Error; err != nil {
				return err
			}
		}

		session.AnganwadiAssessments = trackers
		return nil
	})
}

func (r *assessmentRepository) List(ctx context.Context) ([]models.AssessmentSession, error) {
	var sessions []models.AssessmentSession
	if err := r.db.WithContext(ctx).
		Preload("AnganwadiAssessments").
		Order("start_date DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (models.AssessmentSession, error) {
	var session models.AssessmentSession
	if err := r.db.WithContext(ctx).
		Preload("AnganwadiAssessments").
		Preload("AnganwadiAssessments.Anganwadi").
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return models.AssessmentSession{}, err
	}

	return session, nil
}

// GetSession loads the bare session row without associations.
func (r *assessmentRepository) GetSession(ctx context.Context, id string) (models.AssessmentSession, error) {
	var session models.AssessmentSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return models.AssessmentSession{}, err
	}

	return session, nil
}

func (r *assessmentRepository) UpdateSession(ctx context.Context, session *models.AssessmentSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// CompleteSession forces every tracker complete and closes the session in
// one transaction. This is the administrative override: completion can be
// declared even if some students never submitted.
func (r *assessmentRepository) CompleteSession(ctx context.Context, session *models.AssessmentSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AnganwadiAssessment{}).
			Where("assessment_session_id = ?", session.ID).
			Updates(map[string]interface{}{
				"is_complete":             true,
				"completed_student_count": gorm.Expr("total_student_count"),
			}).Error; err != nil {
			return err
		}

		session.Status = models.AssessmentStatusCompleted
		session.IsActive = false
		return tx.Save(session).Error
	})
}

func (r *assessmentRepository) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_session_id = ?", id).
			Delete(&models.AnganwadiAssessment{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.AssessmentSession{}).Error
	})
}

func (r *assessmentRepository) ListActiveForAnganwadi(ctx context.Context, anganwadiID string, now time.Time) ([]models.AssessmentSession, error) {
	var sessions []models.AssessmentSession
	if err := r.db.WithContext(ctx).
		Preload("AnganwadiAssessments", "anganwadi_id = ?", anganwadiID).
		Where("is_active = ?", true).
		Where("status = ?", models.AssessmentStatusPublished).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("id IN (?)", r.db.Model(&models.AnganwadiAssessment{}).
			Select("assessment_session_id").
			Where("anganwadi_id = ?", anganwadiID)).
		Order("start_date DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListForAnganwadis returns sessions whose tracker set touches any of the
// given anganwadis.
func (r *assessmentRepository) ListForAnganwadis(ctx context.Context, anganwadiIDs []string) ([]models.AssessmentSession, error) {
	if len(anganwadiIDs) == 0 {
		return []models.AssessmentSession{}, nil
	}

	var sessions []models.AssessmentSession
	if err := r.db.WithContext(ctx).
		Preload("AnganwadiAssessments").
		Where("id IN (?)", r.db.Model(&models.AnganwadiAssessment{}).
			Select("assessment_session_id").
			Where("anganwadi_id IN ?", anganwadiIDs)).
		Order("start_date DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *assessmentRepository) GetTracker(ctx context.Context, sessionID, anganwadiID string) (models.AnganwadiAssessment, error) {
	var tracker models.AnganwadiAssessment
	if err := r.db.WithContext(ctx).
		Where("assessment_session_id = ?", sessionID).
		Where("anganwadi_id = ?", anganwadiID).
		First(&tracker).Error; err != nil {
		return models.AnganwadiAssessment{}, err
	}

	return tracker, nil
}

func (r *assessmentRepository) GetSubmission(ctx context.Context, sessionID, studentID string) (models.StudentSubmission, error) {
	var submission models.StudentSubmission
	if err := r.db.WithContext(ctx).
		Where("assessment_session_id = ?", sessionID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.StudentSubmission{}, err
	}

	return submission, nil
}

func (r *assessmentRepository) ListSubmissions(ctx context.Context, sessionID, anganwadiID string) ([]models.StudentSubmission, error) {
	var submissions []models.StudentSubmission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Preload("Responses").
		Preload("Responses.Question").
		Preload("Responses.Scores").
		Where("assessment_session_id = ?", sessionID).
		Where("anganwadi_id = ?", anganwadiID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *assessmentRepository) CountSubmissions(ctx context.Context, sessionID, anganwadiID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentSubmission{}).
		Where("assessment_session_id = ?", sessionID).
		Where("anganwadi_id = ?", anganwadiID).
		Where("submission_status = ?", models.SubmissionStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *assessmentRepository) CountSessionSubmissions(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StudentSubmission{}).
		Where("assessment_session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// RecordSubmission writes the submission and its responses, then refreshes
// the tracker inside the same transaction. The completed count is recomputed
// from the completed submissions rather than blindly incremented, so the
// counter self-corrects if a submission was ever double-processed.
func (r *assessmentRepository) RecordSubmission(ctx context.Context, submission *models.StudentSubmission, responses []models.StudentResponse) (models.AnganwadiAssessment, error) {
	var tracker models.AnganwadiAssessment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}

		for i := range responses {
			responses[i].SubmissionID = &submission.ID
			if err := tx.Create(&responses[i]).Error; err != nil {
				return err
			}
		}

		if err := tx.
			Where("assessment_session_id = ?", submission.AssessmentSessionID).
			Where("anganwadi_id = ?", submission.AnganwadiID).
			First(&tracker).Error; err != nil {
			return err
		}

		var completed int64
		if err := tx.Model(&models.StudentSubmission{}).
			Where("assessment_session_id = ?", submission.AssessmentSessionID).
			Where("anganwadi_id = ?", submission.AnganwadiID).
			Where("submission_status = ?", models.SubmissionStatusCompleted).
			Count(&completed).Error; err != nil {
			return err
		}

		tracker.CompletedStudentCount = int(completed)
		tracker.IsComplete = tracker.CompletedStudentCount >= tracker.TotalStudentCount
		if err := tx.Save(&tracker).Error; err != nil {
			return err
		}

		submission.Responses = responses
		return nil
	})
	if err != nil {
		return models.AnganwadiAssessment{}, err
	}

	return tracker, nil
}
