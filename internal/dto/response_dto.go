package dto

import (
	"sort"
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// ResponseCreateRequest records a single response against a legacy evaluation.
type ResponseCreateRequest struct {
	EvaluationID string    `json:"evaluation_id" validate:"required"`
	QuestionID   string    `json:"question_id" validate:"required"`
	StudentID    string    `json:"student_id" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	AudioURL     string    `json:"audio_url"`
}

// ResponseBatchCreateRequest records several responses in one transaction.
type ResponseBatchCreateRequest struct {
	Responses []ResponseCreateRequest `json:"responses" validate:"required,min=1,dive"`
}

// ScoreRequest grades a response manually. Scores run 0-10 inclusive.
type ScoreRequest struct {
	Score    float64 `json:"score" validate:"gte=0,lte=10"`
	GradedBy *string `json:"graded_by"`
}

// AutoScoreRequest feeds a free-text transcription to the heuristic scorer.
type AutoScoreRequest struct {
	Transcription string `json:"transcription" validate:"required"`
}

// AutoScoreResult reports what the heuristic scorer decided.
type AutoScoreResult struct {
	MatchedOption *string `json:"matched_option"`
	MatchedIndex  int     `json:"matched_index"`
	Similarity    float64 `json:"similarity"`
	IsCorrect     bool    `json:"is_correct"`
	Score         float64 `json:"score"`
}

// ScoreResponse serializes a score record.
type ScoreResponse struct {
	ID         string    `json:"id"`
	ResponseID string    `json:"response_id"`
	Score      float64   `json:"score"`
	GradedAt   time.Time `json:"graded_at"`
	GradedBy   *string   `json:"graded_by"`
}

// StudentResponseResponse serializes a response with its score history,
// most recent first.
type StudentResponseResponse struct {
	ID           string          `json:"id"`
	SubmissionID *string         `json:"submission_id"`
	EvaluationID *string         `json:"evaluation_id"`
	QuestionID   string          `json:"question_id"`
	StudentID    string          `json:"student_id"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	AudioURL     string          `json:"audio_url"`
	MetadataURL  string          `json:"metadata_url"`
	Question     *QuestionLite   `json:"question,omitempty"`
	Student      *StudentLite    `json:"student,omitempty"`
	Scores       []ScoreResponse `json:"scores"`
	CurrentScore *float64        `json:"current_score"`
}

// QuestionLite summarizes a question in nested responses.
type QuestionLite struct {
	ID      string `json:"id"`
	TopicID string `json:"topic_id"`
	Text    string `json:"text"`
}

// NewScoreResponse converts a score model into a DTO.
func NewScoreResponse(model models.StudentResponseScore) ScoreResponse {
	return ScoreResponse{
		ID:         model.ID,
		ResponseID: model.ResponseID,
		Score:      model.Score,
		GradedAt:   model.GradedAt,
		GradedBy:   model.GradedBy,
	}
}

// NewStudentResponseResponse converts a response model into a DTO. Scores are
// ordered most-recent first; the newest one is surfaced as CurrentScore.
func NewStudentResponseResponse(model models.StudentResponse) StudentResponseResponse {
	response := StudentResponseResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		EvaluationID: model.EvaluationID,
		QuestionID:   model.QuestionID,
		StudentID:    model.StudentID,
		StartTime:    model.StartTime,
		EndTime:      model.EndTime,
		AudioURL:     model.AudioURL,
		MetadataURL:  model.MetadataURL,
		Scores:       []ScoreResponse{},
	}

	if model.Question != nil {
		response.Question = &QuestionLite{
			ID:      model.Question.ID,
			TopicID: model.Question.TopicID,
			Text:    model.Question.Text,
		}
	}

	if model.Student != nil {
		response.Student = &StudentLite{
			ID:     model.Student.ID,
			Name:   model.Student.Name,
			Gender: model.Student.Gender,
			Status: model.Student.Status,
		}
	}

	for _, score := range model.Scores {
		response.Scores = append(response.Scores, NewScoreResponse(score))
	}
	sortScoresByRecency(response.Scores)

	if current := model.CurrentScore(); current != nil {
		value := current.Score
		response.CurrentScore = &value
	}

	return response
}

func sortScoresByRecency(scores []ScoreResponse) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].GradedAt.After(scores[j].GradedAt)
	})
}
