package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
)

// ErrResponseNotFound indicates the student response does not exist.
var ErrResponseNotFound = errors.New("response not found")

// ErrScoreOutOfRange indicates a score outside the 0-10 grading scale.
var ErrScoreOutOfRange = errors.New("score must be between 0 and 10")

// ErrQuestionHasNoOptions indicates the question cannot be auto-scored
// because it carries no answer options.
var ErrQuestionHasNoOptions = errors.New("question has no answer options")

const (
	// autoScoreThreshold is the minimum similarity for an option to count
	// as matched.
	autoScoreThreshold = 0.5
	// autoScoreCorrect is awarded when the matched option is a correct
	// answer; anything else scores zero.
	autoScoreCorrect = 5.0
)

// ScoringService grades student responses. Manual grading appends a score
// record; auto grading matches a transcription against the question's answer
// options and appends the resulting score. History is never overwritten.
type ScoringService interface {
	Score(ctx context.Context, responseID string, payload dto.ScoreRequest) (dto.StudentResponseResponse, error)
	AutoScore(ctx context.Context, responseID string, payload dto.AutoScoreRequest) (dto.AutoScoreResult, dto.StudentResponseResponse, error)
}

type scoringService struct {
	responses repository.ResponseRepository
	topics    repository.TopicRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewScoringService constructs a ScoringService instance.
func NewScoringService(
	responses repository.ResponseRepository,
	topics repository.TopicRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ScoringService {
	return &scoringService{
		responses: responses,
		topics:    topics,
		validator: validate,
		logger:    logger.With().Str("component", "scoring_service").Logger(),
		now:       time.Now,
	}
}

func (s *scoringService) Score(ctx context.Context, responseID string, payload dto.ScoreRequest) (dto.StudentResponseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponseResponse{}, err
	}
	if payload.Score < 0 || payload.Score > 10 {
		return dto.StudentResponseResponse{}, ErrScoreOutOfRange
	}

	if _, err := s.responses.GetByID(ctx, responseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponseResponse{}, ErrResponseNotFound
		}
		return dto.StudentResponseResponse{}, err
	}

	score := models.StudentResponseScore{
		ResponseID: responseID,
		Score:      payload.Score,
		GradedAt:   s.now(),
		GradedBy:   payload.GradedBy,
	}
	if err := s.responses.AddScore(ctx, &score); err != nil {
		return dto.StudentResponseResponse{}, err
	}

	s.logger.Info().
		Str("response_id", responseID).
		Float64("score", payload.Score).
		Msg("response graded")

	updated, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return dto.StudentResponseResponse{}, err
	}

	return dto.NewStudentResponseResponse(updated), nil
}

func (s *scoringService) AutoScore(ctx context.Context, responseID string, payload dto.AutoScoreRequest) (dto.AutoScoreResult, dto.StudentResponseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, err
	}

	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, ErrResponseNotFound
		}
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, err
	}

	question, err := s.topics.GetQuestion(ctx, response.QuestionID)
	if err != nil {
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, err
	}

	options := question.Options()
	if len(options) == 0 {
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, ErrQuestionHasNoOptions
	}

	result := matchTranscription(payload.Transcription, options, question.CorrectIndexes())

	gradedBy := "auto-scorer"
	score := models.StudentResponseScore{
		ResponseID: responseID,
		Score:      result.Score,
		GradedAt:   s.now(),
		GradedBy:   &gradedBy,
	}
	if err := s.responses.AddScore(ctx, &score); err != nil {
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, err
	}

	s.logger.Info().
		Str("response_id", responseID).
		Int("matched_index", result.MatchedIndex).
		Float64("similarity", result.Similarity).
		Bool("correct", result.IsCorrect).
		Msg("response auto-scored")

	updated, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return dto.AutoScoreResult{}, dto.StudentResponseResponse{}, err
	}

	return result, dto.NewStudentResponseResponse(updated), nil
}

// matchTranscription finds the answer option most similar to the transcribed
// speech. A full-score match requires similarity of at least the threshold
// and the option to be among the correct answers.
func matchTranscription(transcription string, options []string, correctIndexes []int) dto.AutoScoreResult {
	normalized := normalizeText(transcription)

	result := dto.AutoScoreResult{MatchedIndex: -1}
	for i, option := range options {
		similarity := textSimilarity(normalized, normalizeText(option))
		if similarity > result.Similarity {
			result.Similarity = similarity
			result.MatchedIndex = i
		}
	}

	if result.MatchedIndex < 0 || result.Similarity < autoScoreThreshold {
		result.MatchedIndex = -1
		return result
	}

	matched := options[result.MatchedIndex]
	result.MatchedOption = &matched
	for _, index := range correctIndexes {
		if index == result.MatchedIndex {
			result.IsCorrect = true
			result.Score = autoScoreCorrect
			break
		}
	}

	return result
}

// normalizeText lowercases, strips punctuation, and collapses runs of
// whitespace so spoken transcriptions compare cleanly against options.
func normalizeText(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
		case unicode.IsSpace(r):
			builder.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(builder.String()), " ")
}

// textSimilarity scores how well an option matches a transcription. Substring
// containment either way is a full match; otherwise the score is the share of
// the option's words present in the transcription.
func textSimilarity(transcription, option string) float64 {
	if transcription == "" || option == "" {
		return 0
	}
	if strings.Contains(transcription, option) || strings.Contains(option, transcription) {
		return 1
	}

	transcribed := make(map[string]struct{})
	for _, word := range strings.Fields(transcription) {
		transcribed[word] = struct{}{}
	}

	optionWords := strings.Fields(option)
	if len(optionWords) == 0 {
		return 0
	}

	matched := 0
	for _, word := range optionWords {
		if _, ok := transcribed[word]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(optionWords))
}
