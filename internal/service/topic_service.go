package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrTopicNotFound indicates the topic does not exist.
var ErrTopicNotFound = errors.New("topic not found")

// ErrQuestionNotFound indicates the question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// ErrTopicHasQuestions blocks deleting a topic that still has questions.
var ErrTopicHasQuestions = errors.New("topic still has questions")

// ErrCorrectAnswerOutOfRange indicates a correct-answer index pointing
// outside the option list.
var ErrCorrectAnswerOutOfRange = errors.New("correct answer index out of range")

// TopicService manages topics and their questions. Question media files are
// uploaded before the record is written; temp files are removed either way.
type TopicService interface {
	Create(ctx context.Context, payload dto.TopicCreateRequest) (dto.TopicResponse, error)
	List(ctx context.Context) ([]dto.TopicResponse, error)
	GetByID(ctx context.Context, id string) (dto.TopicResponse, error)
	Update(ctx context.Context, id string, payload dto.TopicUpdateRequest) (dto.TopicResponse, error)
	Delete(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest, imagePath, audioPath string) (dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id string) (dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, topicID string) ([]dto.QuestionResponse, error)
}

type topicService struct {
	topics    repository.TopicRepository
	uploader  FileUploader
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTopicService constructs a TopicService instance.
func NewTopicService(
	topics repository.TopicRepository,
	uploader FileUploader,
	validate *validator.Validate,
	logger zerolog.Logger,
) TopicService {
	return &topicService{
		topics:    topics,
		uploader:  uploader,
		validator: validate,
		logger:    logger.With().Str("component", "topic_service").Logger(),
	}
}

func (s *topicService) Create(ctx context.Context, payload dto.TopicCreateRequest) (dto.TopicResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TopicResponse{}, err
	}

	version := payload.Version
	if version == 0 {
		version = 1
	}

	topic := models.Topic{
		Name:    payload.Name,
		Version: version,
	}
	if err := s.topics.Create(ctx, &topic); err != nil {
		return dto.TopicResponse{}, err
	}

	s.logger.Info().Str("topic_id", topic.ID).Str("name", topic.Name).Msg("topic created")

	return dto.NewTopicResponse(topic), nil
}

func (s *topicService) List(ctx context.Context) ([]dto.TopicResponse, error) {
	topics, err := s.topics.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TopicResponse, 0, len(topics))
	for _, topic := range topics {
		responses = append(responses, dto.NewTopicResponse(topic))
	}

	return responses, nil
}

func (s *topicService) GetByID(ctx context.Context, id string) (dto.TopicResponse, error) {
	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TopicResponse{}, ErrTopicNotFound
		}
		return dto.TopicResponse{}, err
	}

	return dto.NewTopicResponse(topic), nil
}

func (s *topicService) Update(ctx context.Context, id string, payload dto.TopicUpdateRequest) (dto.TopicResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TopicResponse{}, err
	}

	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TopicResponse{}, ErrTopicNotFound
		}
		return dto.TopicResponse{}, err
	}

	if payload.Name != nil {
		topic.Name = *payload.Name
	}
	if payload.Version != nil {
		topic.Version = *payload.Version
	}

	if err := s.topics.Update(ctx, &topic); err != nil {
		return dto.TopicResponse{}, err
	}

	return dto.NewTopicResponse(topic), nil
}

func (s *topicService) Delete(ctx context.Context, id string) error {
	topic, err := s.topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTopicNotFound
		}
		return err
	}

	if len(topic.Questions) > 0 {
		return ErrTopicHasQuestions
	}

	return s.topics.Delete(ctx, id)
}

func (s *topicService) CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest, imagePath, audioPath string) (dto.QuestionResponse, error) {
	defer removeTempFile(s.logger, imagePath)
	defer removeTempFile(s.logger, audioPath)

	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}
	for _, index := range payload.CorrectAnswers {
		if index >= len(payload.AnswerOptions) {
			return dto.QuestionResponse{}, ErrCorrectAnswerOutOfRange
		}
	}

	if _, err := s.topics.GetByID(ctx, payload.TopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrTopicNotFound
		}
		return dto.QuestionResponse{}, err
	}

	var imageURL string
	if imagePath != "" {
		url, err := s.uploader.UploadFile(ctx, imagePath, "image")
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		imageURL = url
	}

	var audioURL string
	if audioPath != "" {
		url, err := s.uploader.UploadFile(ctx, audioPath, "audio")
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		audioURL = url
	}

	question := models.Question{
		TopicID:  payload.TopicID,
		Text:     payload.Text,
		ImageURL: imageURL,
		AudioURL: audioURL,
	}
	if err := question.SetOptions(payload.AnswerOptions); err != nil {
		return dto.QuestionResponse{}, err
	}
	if err := question.SetCorrectIndexes(payload.CorrectAnswers); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.topics.CreateQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().
		Str("question_id", question.ID).
		Str("topic_id", question.TopicID).
		Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

func (s *topicService) GetQuestion(ctx context.Context, id string) (dto.QuestionResponse, error) {
	question, err := s.topics.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *topicService) ListQuestions(ctx context.Context, topicID string) ([]dto.QuestionResponse, error) {
	if _, err := s.topics.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	questions, err := s.topics.ListQuestionsByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionResponse(question))
	}

	return responses, nil
}
