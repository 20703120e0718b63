package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// EvaluationCreateRequest describes the non-file fields of the evaluation
// multipart payload; audio and metadata arrive as files.
type EvaluationCreateRequest struct {
	TeacherID  string `form:"teacher_id" validate:"required"`
	StudentID  string `form:"student_id" validate:"required"`
	TopicID    string `form:"topic_id" validate:"required"`
	WeekNumber int    `form:"week_number" validate:"omitempty,gte=1"`
}

// EvaluationBatchRequest submits a finished evaluation with its responses in
// one transaction, the way the teacher app uploads a completed exam.
type EvaluationBatchRequest struct {
	TeacherID           string                      `json:"teacher_id" validate:"required"`
	StudentID           string                      `json:"student_id" validate:"required"`
	TopicID             string                      `json:"topic_id" validate:"required"`
	AssessmentSessionID *string                     `json:"assessment_session_id"`
	WeekNumber          int                         `json:"week_number" validate:"omitempty,gte=1"`
	AudioURL            string                      `json:"audio_url"`
	MetadataURL         string                      `json:"metadata_url"`
	Responses           []SubmissionResponsePayload `json:"responses" validate:"required,min=1,dive"`
}

// EvaluationResponse serializes an evaluation.
type EvaluationResponse struct {
	ID                  string                    `json:"id"`
	TeacherID           string                    `json:"teacher_id"`
	StudentID           string                    `json:"student_id"`
	TopicID             string                    `json:"topic_id"`
	AssessmentSessionID *string                   `json:"assessment_session_id"`
	WeekNumber          int                       `json:"week_number"`
	AudioURL            string                    `json:"audio_url"`
	MetadataURL         string                    `json:"metadata_url"`
	Status              string                    `json:"status"`
	GradingComplete     bool                      `json:"grading_complete"`
	SubmittedAt         *time.Time                `json:"submitted_at"`
	Teacher             *TeacherLite              `json:"teacher,omitempty"`
	Student             *StudentLite              `json:"student,omitempty"`
	Topic               *TopicResponse            `json:"topic,omitempty"`
	Responses           []StudentResponseResponse `json:"responses,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
}

// NewEvaluationResponse converts an evaluation model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	response := EvaluationResponse{
		ID:                  model.ID,
		TeacherID:           model.TeacherID,
		StudentID:           model.StudentID,
		TopicID:             model.TopicID,
		AssessmentSessionID: model.AssessmentSessionID,
		WeekNumber:          model.WeekNumber,
		AudioURL:            model.AudioURL,
		MetadataURL:         model.MetadataURL,
		Status:              model.Status,
		GradingComplete:     model.GradingComplete,
		SubmittedAt:         model.SubmittedAt,
		CreatedAt:           model.CreatedAt,
	}

	if model.Teacher != nil {
		response.Teacher = &TeacherLite{ID: model.Teacher.ID, Name: model.Teacher.Name, Phone: model.Teacher.Phone}
	}
	if model.Student != nil {
		response.Student = &StudentLite{ID: model.Student.ID, Name: model.Student.Name, Gender: model.Student.Gender, Status: model.Student.Status}
	}
	if model.Topic != nil {
		topic := NewTopicResponse(*model.Topic)
		response.Topic = &topic
	}
	for _, item := range model.Responses {
		response.Responses = append(response.Responses, NewStudentResponseResponse(item))
	}

	return response
}
