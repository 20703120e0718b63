package dto

import (
	"time"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// TopicCreateRequest creates a topic; version defaults to 1.
type TopicCreateRequest struct {
	Name    string `json:"name" validate:"required,min=1"`
	Version int    `json:"version" validate:"omitempty,gte=1"`
}

// TopicUpdateRequest updates a topic's name and/or version.
type TopicUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Version *int    `json:"version" validate:"omitempty,gte=1"`
}

// TopicResponse serializes a topic with its questions.
type TopicResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Version   int                `json:"version"`
	Questions []QuestionResponse `json:"questions,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// QuestionCreateRequest describes the multipart fields for a new question.
// Image and audio arrive as files and are uploaded to media storage.
type QuestionCreateRequest struct {
	TopicID        string   `json:"topic_id" validate:"required"`
	Text           string   `json:"text"`
	AnswerOptions  []string `json:"answer_options"`
	CorrectAnswers []int    `json:"correct_answers" validate:"omitempty,dive,gte=0"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	ID             string    `json:"id"`
	TopicID        string    `json:"topic_id"`
	Text           string    `json:"text"`
	ImageURL       string    `json:"image_url"`
	AudioURL       string    `json:"audio_url"`
	AnswerOptions  []string  `json:"answer_options"`
	CorrectAnswers []int     `json:"correct_answers"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewTopicResponse converts a topic model into a DTO.
func NewTopicResponse(model models.Topic) TopicResponse {
	response := TopicResponse{
		ID:        model.ID,
		Name:      model.Name,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
	}

	for _, question := range model.Questions {
		response.Questions = append(response.Questions, NewQuestionResponse(question))
	}

	return response
}

// NewQuestionResponse converts a question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	options := model.Options()
	if options == nil {
		options = []string{}
	}
	indexes := model.CorrectIndexes()
	if indexes == nil {
		indexes = []int{}
	}

	return QuestionResponse{
		ID:             model.ID,
		TopicID:        model.TopicID,
		Text:           model.Text,
		ImageURL:       model.ImageURL,
		AudioURL:       model.AudioURL,
		AnswerOptions:  options,
		CorrectAnswers: indexes,
		CreatedAt:      model.CreatedAt,
	}
}
