package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// AssessmentCreateRequest describes the payload for creating an assessment
// session. The anganwadi set is resolved from AnganwadiIDs and/or the member
// anganwadis of CohortIDs; at least one of them must resolve to something.
type AssessmentCreateRequest struct {
	Name         string    `json:"name" validate:"required,min=1"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	TopicIDs     []string  `json:"topic_ids" validate:"required,min=1,dive,required"`
	AnganwadiIDs []string  `json:"anganwadi_ids"`
	CohortIDs    []string  `json:"cohort_ids"`
}

// AssessmentStats aggregates completion progress across an assessment's
// anganwadi trackers.
type AssessmentStats struct {
	TotalAnganwadis                int `json:"total_anganwadis"`
	CompletedAnganwadis            int `json:"completed_anganwadis"`
	AnganwadiCompletionPercentage  int `json:"anganwadi_completion_percentage"`
	TotalStudents                  int `json:"total_students"`
	CompletedStudents              int `json:"completed_students"`
	StudentCompletionPercentage    int `json:"student_completion_percentage"`
}

// AnganwadiAssessmentResponse serializes one anganwadi progress tracker.
type AnganwadiAssessmentResponse struct {
	ID                    string         `json:"id"`
	AssessmentSessionID   string         `json:"assessment_session_id"`
	AnganwadiID           string         `json:"anganwadi_id"`
	TotalStudentCount     int            `json:"total_student_count"`
	CompletedStudentCount int            `json:"completed_student_count"`
	IsComplete            bool           `json:"is_complete"`
	Anganwadi             *AnganwadiLite `json:"anganwadi,omitempty"`
}

// AssessmentResponse serializes an assessment session with its trackers.
type AssessmentResponse struct {
	ID                   string                        `json:"id"`
	Name                 string                        `json:"name"`
	Description          string                        `json:"description"`
	StartDate            time.Time                     `json:"start_date"`
	EndDate              time.Time                     `json:"end_date"`
	IsActive             bool                          `json:"is_active"`
	Status               string                        `json:"status"`
	TopicIDs             []string                      `json:"topic_ids"`
	AnganwadiAssessments []AnganwadiAssessmentResponse `json:"anganwadi_assessments,omitempty"`
	Topics               []TopicResponse               `json:"topics,omitempty"`
	Stats                *AssessmentStats              `json:"stats,omitempty"`
	CreatedAt            time.Time                     `json:"created_at"`
}

// SubmissionResponsePayload is one answer within a submission recording.
type SubmissionResponsePayload struct {
	QuestionID   string    `json:"question_id" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	AudioURL     string    `json:"audio_url"`
	MetadataURL  string    `json:"metadata_url"`
	EvaluationID *string   `json:"evaluation_id"`
}

// RecordSubmissionRequest records one student's completed responses against
// an active assessment session.
type RecordSubmissionRequest struct {
	TeacherID   string                      `json:"teacher_id" validate:"required"`
	AnganwadiID string                      `json:"anganwadi_id" validate:"required"`
	Responses   []SubmissionResponsePayload `json:"responses" validate:"required,min=1,dive"`
}

// StudentSubmissionResponse serializes a recorded submission.
type StudentSubmissionResponse struct {
	ID                  string                    `json:"id"`
	AssessmentSessionID string                    `json:"assessment_session_id"`
	StudentID           string                    `json:"student_id"`
	AnganwadiID         string                    `json:"anganwadi_id"`
	TeacherID           string                    `json:"teacher_id"`
	SubmissionStatus    string                    `json:"submission_status"`
	SubmittedAt         time.Time                 `json:"submitted_at"`
	Student             *StudentLite              `json:"student,omitempty"`
	Teacher             *TeacherLite              `json:"teacher,omitempty"`
	Responses           []StudentResponseResponse `json:"responses,omitempty"`
}

// NewAnganwadiAssessmentResponse converts a tracker model into a DTO.
func NewAnganwadiAssessmentResponse(model models.AnganwadiAssessment) AnganwadiAssessmentResponse {
	response := AnganwadiAssessmentResponse{
		ID:                    model.ID,
		AssessmentSessionID:   model.AssessmentSessionID,
		AnganwadiID:           model.AnganwadiID,
		TotalStudentCount:     model.TotalStudentCount,
		CompletedStudentCount: model.CompletedStudentCount,
		IsComplete:            model.IsComplete,
	}

	if model.Anganwadi != nil {
		response.Anganwadi = &AnganwadiLite{
			ID:       model.Anganwadi.ID,
			Name:     model.Anganwadi.Name,
			Location: model.Anganwadi.Location,
			District: model.Anganwadi.District,
			State:    model.Anganwadi.State,
		}
	}

	return response
}

// NewAssessmentResponse converts a session model into a DTO.
func NewAssessmentResponse(model models.AssessmentSession) AssessmentResponse {
	response := AssessmentResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		IsActive:    model.IsActive,
		Status:      model.Status,
		TopicIDs:    model.TopicIDList(),
		CreatedAt:   model.CreatedAt,
	}

	for _, tracker := range model.AnganwadiAssessments {
		response.AnganwadiAssessments = append(response.AnganwadiAssessments, NewAnganwadiAssessmentResponse(tracker))
	}

	return response
}

// NewAssessmentStats computes completion statistics over a session's trackers.
func NewAssessmentStats(trackers []models.AnganwadiAssessment) AssessmentStats {
	stats := AssessmentStats{TotalAnganwadis: len(trackers)}
	for _, tracker := range trackers {
		if tracker.IsComplete {
			stats.CompletedAnganwadis++
		}
		stats.TotalStudents += tracker.TotalStudentCount
		stats.CompletedStudents += tracker.CompletedStudentCount
	}

	if stats.TotalAnganwadis > 0 {
		stats.AnganwadiCompletionPercentage = roundPercentage(stats.CompletedAnganwadis, stats.TotalAnganwadis)
	}
	if stats.TotalStudents > 0 {
		stats.StudentCompletionPercentage = roundPercentage(stats.CompletedStudents, stats.TotalStudents)
	}

	return stats
}

func roundPercentage(part, whole int) int {
	return int(float64(part)/float64(whole)*100 + 0.5)
}

// NewStudentSubmissionResponse converts a submission model into a DTO.
func NewStudentSubmissionResponse(model models.StudentSubmission) StudentSubmissionResponse {
	response := StudentSubmissionResponse{
		ID:                  model.ID,
		AssessmentSessionID: model.AssessmentSessionID,
		StudentID:           model.StudentID,
		AnganwadiID:         model.AnganwadiID,
		TeacherID:           model.TeacherID,
		SubmissionStatus:    model.SubmissionStatus,
		SubmittedAt:         model.SubmittedAt,
	}

	if model.Student != nil {
		response.Student = &StudentLite{
			ID:     model.Student.ID,
			Name:   model.Student.Name,
			Gender: model.Student.Gender,
			Status: model.Student.Status,
		}
	}

	if model.Teacher != nil {
		response.Teacher = &TeacherLite{
			ID:    model.Teacher.ID,
			Name:  model.Teacher.Name,
			Phone: model.Teacher.Phone,
		}
	}

	for _, item := range model.Responses {
		response.Responses = append(response.Responses, NewStudentResponseResponse(item))
	}

	return response
}
