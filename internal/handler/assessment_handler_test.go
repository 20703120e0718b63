package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/config"
	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/handler"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
	"github.com/kanasu-ecd/kanasu-go-api/internal/router"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
)

type assessmentSeed struct {
	app       *fiber.App
	anganwadi models.Anganwadi
	teacher   models.Teacher
	student   models.Student
	topic     models.Topic
	question  models.Question
}

func setupAssessmentApp(t *testing.T) assessmentSeed {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Anganwadi{},
		&models.Cohort{},
		&models.Teacher{},
		&models.Student{},
		&models.Topic{},
		&models.Question{},
		&models.AssessmentSession{},
		&models.AnganwadiAssessment{},
		&models.StudentSubmission{},
		&models.StudentResponse{},
		&models.StudentResponseScore{},
		&models.Evaluation{},
	))

	anganwadi := models.Anganwadi{Name: "Hosakote Center", District: "Bengaluru Rural", State: "Karnataka"}
	require.NoError(t, db.Create(&anganwadi).Error)

	teacher := models.Teacher{Name: "Lakshmi", Phone: "9876543210", AnganwadiID: &anganwadi.ID}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.Student{Name: "Meera", Gender: "FEMALE", Status: models.StudentStatusActive, AnganwadiID: &anganwadi.ID}
	require.NoError(t, db.Create(&student).Error)

	topic := models.Topic{Name: "Shapes"}
	require.NoError(t, db.Create(&topic).Error)

	question := models.Question{TopicID: topic.ID, Text: "Which shape is round?"}
	require.NoError(t, question.SetOptions([]string{"circle", "square"}))
	require.NoError(t, db.Create(&question).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assessmentRepo := repository.NewAssessmentRepository(db)
	anganwadiRepo := repository.NewAnganwadiRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	assessmentService := service.NewAssessmentService(assessmentRepo, anganwadiRepo, studentRepo, teacherRepo, topicRepo, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", "admin-1")
			c.Locals("user_role", "admin")
			return c.Next()
		},
	})

	return assessmentSeed{
		app:       app,
		anganwadi: anganwadi,
		teacher:   teacher,
		student:   student,
		topic:     topic,
		question:  question,
	}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	return req
}

func createAssessment(t *testing.T, seed assessmentSeed) dto.AssessmentResponse {
	t.Helper()

	req := jsonRequest(t, "POST", "/api/v1/assessments", dto.AssessmentCreateRequest{
		Name:         "Week 12 Literacy",
		Description:  "Weekly spoken assessment",
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(7 * 24 * time.Hour),
		TopicIDs:     []string{seed.topic.ID},
		AnganwadiIDs: []string{seed.anganwadi.ID},
	})
	resp, err := seed.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.AssessmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "assessment created", body.Message)
	require.NotEmpty(t, body.Data.ID)
	return body.Data
}

func publishAssessment(t *testing.T, seed assessmentSeed, id string) {
	t.Helper()
	resp, err := seed.app.Test(jsonRequest(t, "PATCH", "/api/v1/assessments/"+id+"/publish", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func submissionPayload(seed assessmentSeed) dto.RecordSubmissionRequest {
	start := time.Now().Add(-time.Minute)
	return dto.RecordSubmissionRequest{
		TeacherID:   seed.teacher.ID,
		AnganwadiID: seed.anganwadi.ID,
		Responses: []dto.SubmissionResponsePayload{
			{
				QuestionID: seed.question.ID,
				StartTime:  start,
				EndTime:    start.Add(30 * time.Second),
				AudioURL:   "https://cdn.example.com/audio/1.mp3",
			},
		},
	}
}

func TestAssessmentHandlerLifecycle(t *testing.T) {
	seed := setupAssessmentApp(t)

	created := createAssessment(t, seed)
	require.Equal(t, models.AssessmentStatusDraft, created.Status)
	require.NotNil(t, created.Stats)
	require.Equal(t, 1, created.Stats.TotalAnganwadis)
	require.Equal(t, 1, created.Stats.TotalStudents)

	publishAssessment(t, seed, created.ID)

	resp, err := seed.app.Test(jsonRequest(t, "GET", "/api/v1/assessments/"+created.ID, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var getBody struct {
		Success bool                   `json:"success"`
		Data    dto.AssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &getBody)
	require.Equal(t, models.AssessmentStatusPublished, getBody.Data.Status)
	require.Len(t, getBody.Data.Topics, 1)
	require.Equal(t, seed.topic.ID, getBody.Data.Topics[0].ID)

	resp, err = seed.app.Test(jsonRequest(t, "PATCH", "/api/v1/assessments/"+created.ID+"/complete", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Completing a session that never left draft is rejected.
	second := createAssessment(t, seed)
	resp, err = seed.app.Test(jsonRequest(t, "PATCH", "/api/v1/assessments/"+second.ID+"/complete", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssessmentHandlerCreateValidation(t *testing.T) {
	seed := setupAssessmentApp(t)

	req := jsonRequest(t, "POST", "/api/v1/assessments", dto.AssessmentCreateRequest{
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(time.Hour),
		TopicIDs:     []string{seed.topic.ID},
		AnganwadiIDs: []string{seed.anganwadi.ID},
	})
	resp, err := seed.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown anganwadi ids are dropped; nothing left to assess against.
	req = jsonRequest(t, "POST", "/api/v1/assessments", dto.AssessmentCreateRequest{
		Name:         "Orphan",
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(time.Hour),
		TopicIDs:     []string{seed.topic.ID},
		AnganwadiIDs: []string{"missing-anganwadi"},
	})
	resp, err = seed.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssessmentHandlerRecordSubmission(t *testing.T) {
	seed := setupAssessmentApp(t)

	created := createAssessment(t, seed)
	publishAssessment(t, seed, created.ID)

	target := fmt.Sprintf("/api/v1/assessments/%s/students/%s/submissions", created.ID, seed.student.ID)
	resp, err := seed.app.Test(jsonRequest(t, "POST", target, submissionPayload(seed)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Submission dto.StudentSubmissionResponse   `json:"submission"`
			Progress   dto.AnganwadiAssessmentResponse `json:"progress"`
		} `json:"data"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "submission recorded", body.Message)
	require.Equal(t, seed.student.ID, body.Data.Submission.StudentID)
	require.Equal(t, 1, body.Data.Progress.CompletedStudentCount)
	require.Equal(t, 1, body.Data.Progress.TotalStudentCount)
	require.True(t, body.Data.Progress.IsComplete)

	// A second submission for the same student conflicts.
	resp, err = seed.app.Test(jsonRequest(t, "POST", target, submissionPayload(seed)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	listTarget := fmt.Sprintf("/api/v1/assessments/%s/submissions?anganwadi_id=%s", created.ID, seed.anganwadi.ID)
	resp, err = seed.app.Test(jsonRequest(t, "GET", listTarget, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listBody struct {
		Success bool                            `json:"success"`
		Data    []dto.StudentSubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listBody)
	require.Len(t, listBody.Data, 1)
}

func TestAssessmentHandlerRecordSubmissionErrors(t *testing.T) {
	seed := setupAssessmentApp(t)

	created := createAssessment(t, seed)
	publishAssessment(t, seed, created.ID)

	missingAssessment := fmt.Sprintf("/api/v1/assessments/%s/students/%s/submissions", "no-such-session", seed.student.ID)
	resp, err := seed.app.Test(jsonRequest(t, "POST", missingAssessment, submissionPayload(seed)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	missingStudent := fmt.Sprintf("/api/v1/assessments/%s/students/%s/submissions", created.ID, "no-such-student")
	resp, err = seed.app.Test(jsonRequest(t, "POST", missingStudent, submissionPayload(seed)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	outside := submissionPayload(seed)
	outside.AnganwadiID = "different-anganwadi"
	target := fmt.Sprintf("/api/v1/assessments/%s/students/%s/submissions", created.ID, seed.student.ID)
	resp, err = seed.app.Test(jsonRequest(t, "POST", target, outside))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	empty := submissionPayload(seed)
	empty.Responses = nil
	resp, err = seed.app.Test(jsonRequest(t, "POST", target, empty))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssessmentHandlerDeleteGuardedBySubmissions(t *testing.T) {
	seed := setupAssessmentApp(t)

	created := createAssessment(t, seed)
	publishAssessment(t, seed, created.ID)

	target := fmt.Sprintf("/api/v1/assessments/%s/students/%s/submissions", created.ID, seed.student.ID)
	resp, err := seed.app.Test(jsonRequest(t, "POST", target, submissionPayload(seed)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = seed.app.Test(jsonRequest(t, "DELETE", "/api/v1/assessments/"+created.ID, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	untouched := createAssessment(t, seed)
	resp, err = seed.app.Test(jsonRequest(t, "DELETE", "/api/v1/assessments/"+untouched.ID, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
