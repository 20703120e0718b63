package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
	"github.com/kanasu-ecd/kanasu-go-api/internal/utils"
)

// TopicHandler wires topic and question HTTP routes.
type TopicHandler struct {
	service service.TopicService
	logger  zerolog.Logger
}

// NewTopicHandler constructs the handler.
func NewTopicHandler(service service.TopicService, logger zerolog.Logger) *TopicHandler {
	return &TopicHandler{
		service: service,
		logger:  logger.With().Str("component", "topic_handler").Logger(),
	}
}

// Register attaches topic endpoints to the router group.
func (h *TopicHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/questions", h.createQuestion)
	router.Get("/:id/questions", h.listQuestions)
	router.Get("/questions/:questionId", h.getQuestion)
}

func (h *TopicHandler) create(c *fiber.Ctx) error {
	var payload dto.TopicCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	topic, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic created", topic)
}

func (h *TopicHandler) list(c *fiber.Ctx) error {
	topics, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "topics retrieved", topics)
}

func (h *TopicHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	topic, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "topic retrieved", topic)
}

func (h *TopicHandler) update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TopicUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	topic, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "topic updated", topic)
}

func (h *TopicHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "topic deleted", fiber.Map{"id": id})
}

// createQuestion reads a multipart form: text fields plus optional image and
// audio files, which are staged to the OS temp dir before upload.
func (h *TopicHandler) createQuestion(c *fiber.Ctx) error {
	payload := dto.QuestionCreateRequest{
		TopicID: c.FormValue("topic_id"),
		Text:    c.FormValue("text"),
	}

	if options := c.FormValue("answer_options"); options != "" {
		if err := json.Unmarshal([]byte(options), &payload.AnswerOptions); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "answer_options must be a JSON string array")
		}
	}
	if answers := c.FormValue("correct_answers"); answers != "" {
		if err := json.Unmarshal([]byte(answers), &payload.CorrectAnswers); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "correct_answers must be a JSON integer array")
		}
	}

	imagePath, err := h.stageFile(c, "image")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	audioPath, err := h.stageFile(c, "audio")
	if err != nil {
		removeStaged(imagePath)
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	question, err := h.service.CreateQuestion(c.Context(), payload, imagePath, audioPath)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *TopicHandler) listQuestions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.service.ListQuestions(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *TopicHandler) getQuestion(c *fiber.Ctx) error {
	id, err := idParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	question, err := h.service.GetQuestion(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question retrieved", question)
}

// stageFile saves an optional multipart file to the OS temp dir and returns
// its path, or "" when the field is absent.
func (h *TopicHandler) stageFile(c *fiber.Ctx, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	path, err := saveMultipartFile(c, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to stage %s file", field)
	}
	return path, nil
}

func saveMultipartFile(c *fiber.Ctx, fileHeader *multipart.FileHeader) (string, error) {
	name := filepath.Base(fileHeader.Filename)
	if name == "" || name == "." {
		name = "upload"
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("%d-%s", time.Now().UnixNano(), strings.ReplaceAll(name, string(filepath.Separator), "-")))
	if err := c.SaveFile(fileHeader, path); err != nil {
		return "", err
	}
	return path, nil
}

func removeStaged(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

func (h *TopicHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTopicNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "topic not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrTopicHasQuestions),
		errors.Is(err, service.ErrCorrectAnswerOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
