package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func trackerKey(sessionID, anganwadiID string) string {
	return sessionID + "|" + anganwadiID
}

func submissionKey(sessionID, studentID string) string {
	return sessionID + "|" + studentID
}

type memoryAssessmentRepo struct {
	sessions    map[string]models.AssessmentSession
	trackers    map[string]models.AnganwadiAssessment
	submissions map[string]models.StudentSubmission
}

func newMemoryAssessmentRepo() *memoryAssessmentRepo {
	return &memoryAssessmentRepo{
		sessions:    make(map[string]models.AssessmentSession),
		trackers:    make(map[string]models.AnganwadiAssessment),
		submissions: make(map[string]models.StudentSubmission),
	}
}

func (m *memoryAssessmentRepo) CreateWithTrackers(ctx context.Context, session *models.AssessmentSession, trackers []models.AnganwadiAssessment) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	for i := range trackers {
		if trackers[i].ID == "" {
			trackers[i].ID = uuid.NewString()
		}
		trackers[i].AssessmentSessionID = session.ID
		m.trackers[trackerKey(session.ID, trackers[i].AnganwadiID)] = trackers[i]
	}
	session.AnganwadiAssessments = trackers
	m.sessions[session.ID] = *session
	return nil
}

func (m *memoryAssessmentRepo) List(ctx context.Context) ([]models.AssessmentSession, error) {
	sessions := make([]models.AssessmentSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (m *memoryAssessmentRepo) GetByID(ctx context.Context, id string) (models.AssessmentSession, error) {
	return m.GetSession(ctx, id)
}

func (m *memoryAssessmentRepo) GetSession(ctx context.Context, id string) (models.AssessmentSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return models.AssessmentSession{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (m *memoryAssessmentRepo) UpdateSession(ctx context.Context, session *models.AssessmentSession) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.sessions[session.ID] = *session
	return nil
}

func (m *memoryAssessmentRepo) CompleteSession(ctx context.Context, session *models.AssessmentSession) error {
	for key, tracker := range m.trackers {
		if tracker.AssessmentSessionID == session.ID {
			tracker.CompletedStudentCount = tracker.TotalStudentCount
			tracker.IsComplete = true
			m.trackers[key] = tracker
		}
	}
	session.Status = models.AssessmentStatusCompleted
	session.IsActive = false
	m.sessions[session.ID] = *session
	return nil
}

func (m *memoryAssessmentRepo) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	for key, tracker := range m.trackers {
		if tracker.AssessmentSessionID == id {
			delete(m.trackers, key)
		}
	}
	return nil
}

func (m *memoryAssessmentRepo) ListActiveForAnganwadi(ctx context.Context, anganwadiID string, now time.Time) ([]models.AssessmentSession, error) {
	var sessions []models.AssessmentSession
	for _, session := range m.sessions {
		if !session.IsActive || session.Status != models.AssessmentStatusPublished {
			continue
		}
		if session.StartDate.After(now) || session.EndDate.Before(now) {
			continue
		}
		if _, ok := m.trackers[trackerKey(session.ID, anganwadiID)]; !ok {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (m *memoryAssessmentRepo) ListForAnganwadis(ctx context.Context, anganwadiIDs []string) ([]models.AssessmentSession, error) {
	var sessions []models.AssessmentSession
	for _, session := range m.sessions {
		for _, anganwadiID := range anganwadiIDs {
			if _, ok := m.trackers[trackerKey(session.ID, anganwadiID)]; ok {
				sessions = append(sessions, session)
				break
			}
		}
	}
	return sessions, nil
}

func (m *memoryAssessmentRepo) GetTracker(ctx context.Context, sessionID, anganwadiID string) (models.AnganwadiAssessment, error) {
	tracker, ok := m.trackers[trackerKey(sessionID, anganwadiID)]
	if !ok {
		return models.AnganwadiAssessment{}, gorm.ErrRecordNotFound
	}
	return tracker, nil
}

func (m *memoryAssessmentRepo) GetSubmission(ctx context.Context, sessionID, studentID string) (models.StudentSubmission, error) {
	submission, ok := m.submissions[submissionKey(sessionID, studentID)]
	if !ok {
		return models.StudentSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memoryAssessmentRepo) ListSubmissions(ctx context.Context, sessionID, anganwadiID string) ([]models.StudentSubmission, error) {
	submissions := make([]models.StudentSubmission, 0)
	for _, submission := range m.submissions {
		if submission.AssessmentSessionID == sessionID && submission.AnganwadiID == anganwadiID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (m *memoryAssessmentRepo) CountSubmissions(ctx context.Context, sessionID, anganwadiID string) (int64, error) {
	var count int64
	for _, submission := range m.submissions {
		if submission.AssessmentSessionID == sessionID && submission.AnganwadiID == anganwadiID {
			count++
		}
	}
	return count, nil
}

func (m *memoryAssessmentRepo) CountSessionSubmissions(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	for _, submission := range m.submissions {
		if submission.AssessmentSessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (m *memoryAssessmentRepo) RecordSubmission(ctx context.Context, submission *models.StudentSubmission, responses []models.StudentResponse) (models.AnganwadiAssessment, error) {
	key := submissionKey(submission.AssessmentSessionID, submission.StudentID)
	if _, ok := m.submissions[key]; ok {
		return models.AnganwadiAssessment{}, gorm.ErrDuplicatedKey
	}

	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	for i := range responses {
		if responses[i].ID == "" {
			responses[i].ID = uuid.NewString()
		}
		responses[i].SubmissionID = &submission.ID
	}
	submission.Responses = responses
	m.submissions[key] = *submission

	trackerID := trackerKey(submission.AssessmentSessionID, submission.AnganwadiID)
	tracker, ok := m.trackers[trackerID]
	if !ok {
		return models.AnganwadiAssessment{}, gorm.ErrRecordNotFound
	}

	completed, _ := m.CountSubmissions(ctx, submission.AssessmentSessionID, submission.AnganwadiID)
	tracker.CompletedStudentCount = int(completed)
	tracker.IsComplete = tracker.CompletedStudentCount >= tracker.TotalStudentCount
	m.trackers[trackerID] = tracker

	return tracker, nil
}

type memoryStudentRepo struct {
	students map[string]models.Student
}

func newMemoryStudentRepo() *memoryStudentRepo {
	return &memoryStudentRepo{students: make(map[string]models.Student)}
}

func (m *memoryStudentRepo) add(student models.Student) models.Student {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	m.students[student.ID] = student
	return student
}

func (m *memoryStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	m.students[student.ID] = *student
	return nil
}

func (m *memoryStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0, len(m.students))
	for _, student := range m.students {
		students = append(students, student)
	}
	return students, nil
}

func (m *memoryStudentRepo) GetByID(ctx context.Context, id string) (models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (m *memoryStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memoryStudentRepo) CountActiveByAnganwadi(ctx context.Context, anganwadiID string) (int64, error) {
	var count int64
	for _, student := range m.students {
		if student.Status == models.StudentStatusActive && student.AnganwadiID != nil && *student.AnganwadiID == anganwadiID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStudentRepo) ListActiveByAnganwadi(ctx context.Context, anganwadiID string) ([]models.Student, error) {
	students := make([]models.Student, 0)
	for _, student := range m.students {
		if student.Status == models.StudentStatusActive && student.AnganwadiID != nil && *student.AnganwadiID == anganwadiID {
			students = append(students, student)
		}
	}
	return students, nil
}

func (m *memoryStudentRepo) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	var existing []string
	for _, id := range ids {
		if _, ok := m.students[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type memoryAnganwadiRepo struct {
	anganwadis map[string]models.Anganwadi
}

func newMemoryAnganwadiRepo() *memoryAnganwadiRepo {
	return &memoryAnganwadiRepo{anganwadis: make(map[string]models.Anganwadi)}
}

func (m *memoryAnganwadiRepo) add(anganwadi models.Anganwadi) models.Anganwadi {
	if anganwadi.ID == "" {
		anganwadi.ID = uuid.NewString()
	}
	m.anganwadis[anganwadi.ID] = anganwadi
	return anganwadi
}

func (m *memoryAnganwadiRepo) Create(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error {
	if anganwadi.ID == "" {
		anganwadi.ID = uuid.NewString()
	}
	m.anganwadis[anganwadi.ID] = *anganwadi
	return nil
}

func (m *memoryAnganwadiRepo) List(ctx context.Context) ([]models.Anganwadi, error) {
	anganwadis := make([]models.Anganwadi, 0, len(m.anganwadis))
	for _, anganwadi := range m.anganwadis {
		anganwadis = append(anganwadis, anganwadi)
	}
	return anganwadis, nil
}

func (m *memoryAnganwadiRepo) GetByID(ctx context.Context, id string) (models.Anganwadi, error) {
	anganwadi, ok := m.anganwadis[id]
	if !ok {
		return models.Anganwadi{}, gorm.ErrRecordNotFound
	}
	return anganwadi, nil
}

func (m *memoryAnganwadiRepo) GetByName(ctx context.Context, name string) (models.Anganwadi, error) {
	for _, anganwadi := range m.anganwadis {
		if strings.EqualFold(anganwadi.Name, name) {
			return anganwadi, nil
		}
	}
	return models.Anganwadi{}, gorm.ErrRecordNotFound
}

func (m *memoryAnganwadiRepo) Update(ctx context.Context, anganwadi *models.Anganwadi, teacherIDs, studentIDs []string) error {
	if _, ok := m.anganwadis[anganwadi.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.anganwadis[anganwadi.ID] = *anganwadi
	return nil
}

func (m *memoryAnganwadiRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.anganwadis[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.anganwadis, id)
	return nil
}

func (m *memoryAnganwadiRepo) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	var existing []string
	for _, id := range ids {
		if _, ok := m.anganwadis[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type memoryTeacherRepo struct {
	teachers map[string]models.Teacher
}

func newMemoryTeacherRepo() *memoryTeacherRepo {
	return &memoryTeacherRepo{teachers: make(map[string]models.Teacher)}
}

func (m *memoryTeacherRepo) add(teacher models.Teacher) models.Teacher {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	m.teachers[teacher.ID] = teacher
	return teacher
}

func (m *memoryTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	for _, existing := range m.teachers {
		if existing.Phone == teacher.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *memoryTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0, len(m.teachers))
	for _, teacher := range m.teachers {
		teachers = append(teachers, teacher)
	}
	return teachers, nil
}

func (m *memoryTeacherRepo) GetByID(ctx context.Context, id string) (models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return models.Teacher{}, gorm.ErrRecordNotFound
	}
	return teacher, nil
}

func (m *memoryTeacherRepo) GetByPhone(ctx context.Context, phone string) (models.Teacher, error) {
	for _, teacher := range m.teachers {
		if teacher.Phone == phone {
			return teacher, nil
		}
	}
	return models.Teacher{}, gorm.ErrRecordNotFound
}

func (m *memoryTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := m.teachers[teacher.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *memoryTeacherRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.teachers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teachers, id)
	return nil
}

func (m *memoryTeacherRepo) ListByCohort(ctx context.Context, cohortID string) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0)
	for _, teacher := range m.teachers {
		if teacher.CohortID != nil && *teacher.CohortID == cohortID {
			teachers = append(teachers, teacher)
		}
	}
	return teachers, nil
}

func (m *memoryTeacherRepo) ListByAnganwadi(ctx context.Context, anganwadiID string) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0)
	for _, teacher := range m.teachers {
		if teacher.AnganwadiID != nil && *teacher.AnganwadiID == anganwadiID {
			teachers = append(teachers, teacher)
		}
	}
	return teachers, nil
}

func (m *memoryTeacherRepo) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	var existing []string
	for _, id := range ids {
		if _, ok := m.teachers[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type memoryTopicRepo struct {
	topics    map[string]models.Topic
	questions map[string]models.Question
}

func newMemoryTopicRepo() *memoryTopicRepo {
	return &memoryTopicRepo{
		topics:    make(map[string]models.Topic),
		questions: make(map[string]models.Question),
	}
}

func (m *memoryTopicRepo) addQuestion(question models.Question) models.Question {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	m.questions[question.ID] = question
	return question
}

func (m *memoryTopicRepo) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	m.topics[topic.ID] = *topic
	return nil
}

func (m *memoryTopicRepo) List(ctx context.Context) ([]models.Topic, error) {
	topics := make([]models.Topic, 0, len(m.topics))
	for _, topic := range m.topics {
		topics = append(topics, topic)
	}
	return topics, nil
}

func (m *memoryTopicRepo) GetByID(ctx context.Context, id string) (models.Topic, error) {
	topic, ok := m.topics[id]
	if !ok {
		return models.Topic{}, gorm.ErrRecordNotFound
	}
	return topic, nil
}

func (m *memoryTopicRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	topics := make([]models.Topic, 0, len(ids))
	for _, id := range ids {
		if topic, ok := m.topics[id]; ok {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

func (m *memoryTopicRepo) Update(ctx context.Context, topic *models.Topic) error {
	if _, ok := m.topics[topic.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.topics[topic.ID] = *topic
	return nil
}

func (m *memoryTopicRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.topics[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.topics, id)
	return nil
}

func (m *memoryTopicRepo) CreateQuestion(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	m.questions[question.ID] = *question
	return nil
}

func (m *memoryTopicRepo) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *memoryTopicRepo) ListQuestionsByTopic(ctx context.Context, topicID string) ([]models.Question, error) {
	questions := make([]models.Question, 0)
	for _, question := range m.questions {
		if question.TopicID == topicID {
			questions = append(questions, question)
		}
	}
	return questions, nil
}

type assessmentFixture struct {
	svc        AssessmentService
	repo       *memoryAssessmentRepo
	students   *memoryStudentRepo
	anganwadis *memoryAnganwadiRepo
	teachers   *memoryTeacherRepo
	topics     *memoryTopicRepo
}

func newAssessmentFixture() assessmentFixture {
	repo := newMemoryAssessmentRepo()
	students := newMemoryStudentRepo()
	anganwadis := newMemoryAnganwadiRepo()
	teachers := newMemoryTeacherRepo()
	topics := newMemoryTopicRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssessmentService(repo, anganwadis, students, teachers, topics, validate, testLogger())
	return assessmentFixture{svc: svc, repo: repo, students: students, anganwadis: anganwadis, teachers: teachers, topics: topics}
}

func (f assessmentFixture) createPayload(anganwadiIDs, cohortIDs []string) dto.AssessmentCreateRequest {
	return dto.AssessmentCreateRequest{
		Name:         "Week 12 Literacy",
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(7 * 24 * time.Hour),
		TopicIDs:     []string{uuid.NewString()},
		AnganwadiIDs: anganwadiIDs,
		CohortIDs:    cohortIDs,
	}
}

func TestAssessmentCreateFansOutTrackers(t *testing.T) {
	f := newAssessmentFixture()
	busy := f.anganwadis.add(models.Anganwadi{Name: "Hosur Center"})
	empty := f.anganwadis.add(models.Anganwadi{Name: "Dharwad Center"})
	for i := 0; i < 3; i++ {
		f.students.add(models.Student{Name: fmt.Sprintf("Child %d", i), Status: models.StudentStatusActive, AnganwadiID: &busy.ID})
	}
	f.students.add(models.Student{Name: "Moved away", Status: models.StudentStatusDroppedOut, AnganwadiID: &busy.ID})

	result, err := f.svc.Create(context.Background(), f.createPayload([]string{busy.ID, empty.ID}, nil))
	require.NoError(t, err)
	require.Equal(t, models.AssessmentStatusDraft, result.Status)
	require.Len(t, result.AnganwadiAssessments, 2)

	byAnganwadi := make(map[string]dto.AnganwadiAssessmentResponse)
	for _, tracker := range result.AnganwadiAssessments {
		byAnganwadi[tracker.AnganwadiID] = tracker
	}
	require.Equal(t, 3, byAnganwadi[busy.ID].TotalStudentCount)
	require.False(t, byAnganwadi[busy.ID].IsComplete)
	// No active students means there is nothing outstanding.
	require.Equal(t, 0, byAnganwadi[empty.ID].TotalStudentCount)
	require.True(t, byAnganwadi[empty.ID].IsComplete)
}

func TestAssessmentCreateResolvesCohortAnganwadis(t *testing.T) {
	f := newAssessmentFixture()
	shared := f.anganwadis.add(models.Anganwadi{Name: "Shared Center"})
	other := f.anganwadis.add(models.Anganwadi{Name: "Other Center"})
	cohortID := uuid.NewString()
	f.teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001", CohortID: &cohortID, AnganwadiID: &shared.ID})
	f.teachers.add(models.Teacher{Name: "Bina", Phone: "9000000002", CohortID: &cohortID, AnganwadiID: &other.ID})
	f.teachers.add(models.Teacher{Name: "Unassigned", Phone: "9000000003", CohortID: &cohortID})

	// The explicit id overlaps with a cohort teacher's anganwadi; it must
	// not produce a duplicate tracker.
	result, err := f.svc.Create(context.Background(), f.createPayload([]string{shared.ID}, []string{cohortID}))
	require.NoError(t, err)
	require.Len(t, result.AnganwadiAssessments, 2)
}

func TestAssessmentCreateNoAnganwadis(t *testing.T) {
	f := newAssessmentFixture()
	_, err := f.svc.Create(context.Background(), f.createPayload([]string{uuid.NewString()}, nil))
	require.ErrorIs(t, err, ErrNoAnganwadisFound)
}

func TestAssessmentPublishTransitions(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	published, err := f.svc.Publish(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssessmentStatusPublished, published.Status)

	_, err = f.svc.Publish(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrOnlyDraftPublishable)

	completed, err := f.svc.Complete(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssessmentStatusCompleted, completed.Status)
	require.False(t, completed.IsActive)

	_, err = f.svc.Complete(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrOnlyPublishedCompletable)
}

func TestAssessmentCompleteRequiresPublished(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrOnlyPublishedCompletable)
}

func recordPayload(teacherID, anganwadiID string) dto.RecordSubmissionRequest {
	return dto.RecordSubmissionRequest{
		TeacherID:   teacherID,
		AnganwadiID: anganwadiID,
		Responses: []dto.SubmissionResponsePayload{
			{
				QuestionID: uuid.NewString(),
				StartTime:  time.Now().Add(-time.Minute),
				EndTime:    time.Now(),
				AudioURL:   "https://cdn.example.com/audio/1.mp3",
			},
		},
	}
}

func TestRecordSubmissionUpdatesTracker(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	teacher := f.teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001", AnganwadiID: &anganwadi.ID})
	first := f.students.add(models.Student{Name: "First", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID})
	second := f.students.add(models.Student{Name: "Second", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID})

	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	submission, progress, err := f.svc.RecordSubmission(context.Background(), created.ID, first.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.NoError(t, err)
	require.Equal(t, first.ID, submission.StudentID)
	require.Len(t, submission.Responses, 1)
	require.Equal(t, 1, progress.CompletedStudentCount)
	require.Equal(t, 2, progress.TotalStudentCount)
	require.False(t, progress.IsComplete)

	_, progress, err = f.svc.RecordSubmission(context.Background(), created.ID, second.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.NoError(t, err)
	require.Equal(t, 2, progress.CompletedStudentCount)
	require.True(t, progress.IsComplete)
}

func TestRecordSubmissionDuplicate(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	teacher := f.teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001"})
	student := f.students.add(models.Student{Name: "Child", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID})

	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, student.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.NoError(t, err)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, student.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestRecordSubmissionPreconditions(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	elsewhere := f.anganwadis.add(models.Anganwadi{Name: "Elsewhere"})
	teacher := f.teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001"})
	active := f.students.add(models.Student{Name: "Active", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID})
	inactive := f.students.add(models.Student{Name: "Inactive", Status: models.StudentStatusInactive, AnganwadiID: &anganwadi.ID})
	misplaced := f.students.add(models.Student{Name: "Misplaced", Status: models.StudentStatusActive, AnganwadiID: &elsewhere.ID})

	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	_, _, err = f.svc.RecordSubmission(context.Background(), uuid.NewString(), active.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrAssessmentNotFound)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, active.ID, recordPayload(teacher.ID, elsewhere.ID))
	require.ErrorIs(t, err, ErrAnganwadiNotInAssessment)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, uuid.NewString(), recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrStudentNotFound)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, inactive.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrStudentNotActive)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, misplaced.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrStudentNotInAnganwadi)

	session, err := f.repo.GetSession(context.Background(), created.ID)
	require.NoError(t, err)
	session.IsActive = false
	require.NoError(t, f.repo.UpdateSession(context.Background(), &session))

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, active.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.ErrorIs(t, err, ErrAssessmentNotActive)
}

func TestAssessmentDeleteGuardedBySubmissions(t *testing.T) {
	f := newAssessmentFixture()
	anganwadi := f.anganwadis.add(models.Anganwadi{Name: "Center"})
	teacher := f.teachers.add(models.Teacher{Name: "Asha", Phone: "9000000001"})
	student := f.students.add(models.Student{Name: "Child", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID})

	created, err := f.svc.Create(context.Background(), f.createPayload([]string{anganwadi.ID}, nil))
	require.NoError(t, err)

	_, _, err = f.svc.RecordSubmission(context.Background(), created.ID, student.ID, recordPayload(teacher.ID, anganwadi.ID))
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrAssessmentHasSubmissions)
}
