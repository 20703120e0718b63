package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func setupAssessmentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setupTestDB(t,
		&models.Anganwadi{},
		&models.Teacher{},
		&models.Student{},
		&models.AssessmentSession{},
		&models.AnganwadiAssessment{},
		&models.StudentSubmission{},
		&models.StudentResponse{},
		&models.StudentResponseScore{},
		&models.Evaluation{},
	)
}

func seedSession(t *testing.T, repo AssessmentRepository, anganwadiIDs []string, totals []int) models.AssessmentSession {
	t.Helper()
	session := models.AssessmentSession{
		Name:      "Week 12 Literacy",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(7 * 24 * time.Hour),
		IsActive:  true,
		Status:    models.AssessmentStatusPublished,
	}
	require.NoError(t, session.SetTopicIDs([]string{uuid.NewString()}))

	trackers := make([]models.AnganwadiAssessment, 0, len(anganwadiIDs))
	for i, anganwadiID := range anganwadiIDs {
		trackers = append(trackers, models.AnganwadiAssessment{
			AnganwadiID:       anganwadiID,
			TotalStudentCount: totals[i],
			IsComplete:        totals[i] == 0,
		})
	}

	require.NoError(t, repo.CreateWithTrackers(context.Background(), &session, trackers))
	return session
}

func submission(sessionID, studentID, anganwadiID, teacherID string) *models.StudentSubmission {
	return &models.StudentSubmission{
		AssessmentSessionID: sessionID,
		StudentID:           studentID,
		AnganwadiID:         anganwadiID,
		TeacherID:           teacherID,
		SubmissionStatus:    models.SubmissionStatusCompleted,
		SubmittedAt:         time.Now(),
	}
}

func TestCreateWithTrackersWritesAtomically(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewAssessmentRepository(db)

	first := uuid.NewString()
	second := uuid.NewString()
	session := seedSession(t, repo, []string{first, second}, []int{3, 0})

	loaded, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, loaded.AnganwadiAssessments, 2)
	for _, tracker := range loaded.AnganwadiAssessments {
		require.Equal(t, session.ID, tracker.AssessmentSessionID)
	}

	tracker, err := repo.GetTracker(context.Background(), session.ID, second)
	require.NoError(t, err)
	require.True(t, tracker.IsComplete)
}

func TestRecordSubmissionRecountsTracker(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewAssessmentRepository(db)

	anganwadiID := uuid.NewString()
	teacherID := uuid.NewString()
	session := seedSession(t, repo, []string{anganwadiID}, []int{2})

	firstStudent := uuid.NewString()
	responses := []models.StudentResponse{
		{QuestionID: uuid.NewString(), StudentID: firstStudent, AudioURL: "https://cdn.example.com/a.mp3"},
		{QuestionID: uuid.NewString(), StudentID: firstStudent},
	}

	tracker, err := repo.RecordSubmission(context.Background(), submission(session.ID, firstStudent, anganwadiID, teacherID), responses)
	require.NoError(t, err)
	require.Equal(t, 1, tracker.CompletedStudentCount)
	require.False(t, tracker.IsComplete)

	stored, err := repo.GetSubmission(context.Background(), session.ID, firstStudent)
	require.NoError(t, err)

	var linked []models.StudentResponse
	require.NoError(t, db.Where("submission_id = ?", stored.ID).Find(&linked).Error)
	require.Len(t, linked, 2)

	secondStudent := uuid.NewString()
	tracker, err = repo.RecordSubmission(context.Background(), submission(session.ID, secondStudent, anganwadiID, teacherID), nil)
	require.NoError(t, err)
	require.Equal(t, 2, tracker.CompletedStudentCount)
	require.True(t, tracker.IsComplete)
}

func TestRecordSubmissionDuplicateStudent(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewAssessmentRepository(db)

	anganwadiID := uuid.NewString()
	session := seedSession(t, repo, []string{anganwadiID}, []int{2})
	studentID := uuid.NewString()

	_, err := repo.RecordSubmission(context.Background(), submission(session.ID, studentID, anganwadiID, uuid.NewString()), nil)
	require.NoError(t, err)

	_, err = repo.RecordSubmission(context.Background(), submission(session.ID, studentID, anganwadiID, uuid.NewString()), nil)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.CountSessionSubmissions(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestCompleteSessionForcesTrackers(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewAssessmentRepository(db)

	anganwadiID := uuid.NewString()
	session := seedSession(t, repo, []string{anganwadiID}, []int{5})

	require.NoError(t, repo.CompleteSession(context.Background(), &session))
	require.Equal(t, models.AssessmentStatusCompleted, session.Status)
	require.False(t, session.IsActive)

	tracker, err := repo.GetTracker(context.Background(), session.ID, anganwadiID)
	require.NoError(t, err)
	require.True(t, tracker.IsComplete)
	require.Equal(t, 5, tracker.CompletedStudentCount)
}

func TestListActiveForAnganwadiFiltersByWindowAndStatus(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewAssessmentRepository(db)

	anganwadiID := uuid.NewString()
	active := seedSession(t, repo, []string{anganwadiID}, []int{1})

	stale := models.AssessmentSession{
		Name:      "Last Month",
		StartDate: time.Now().Add(-60 * 24 * time.Hour),
		EndDate:   time.Now().Add(-30 * 24 * time.Hour),
		IsActive:  true,
		Status:    models.AssessmentStatusPublished,
	}
	require.NoError(t, stale.SetTopicIDs(nil))
	require.NoError(t, repo.CreateWithTrackers(context.Background(), &stale, []models.AnganwadiAssessment{{AnganwadiID: anganwadiID, TotalStudentCount: 1}}))

	draft := models.AssessmentSession{
		Name:      "Unpublished",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  true,
		Status:    models.AssessmentStatusDraft,
	}
	require.NoError(t, draft.SetTopicIDs(nil))
	require.NoError(t, repo.CreateWithTrackers(context.Background(), &draft, []models.AnganwadiAssessment{{AnganwadiID: anganwadiID, TotalStudentCount: 1}}))

	sessions, err := repo.ListActiveForAnganwadi(context.Background(), anganwadiID, time.Now())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, active.ID, sessions[0].ID)

	sessions, err = repo.ListActiveForAnganwadi(context.Background(), uuid.NewString(), time.Now())
	require.NoError(t, err)
	require.Empty(t, sessions)
}
