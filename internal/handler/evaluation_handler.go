package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
	"github.com/kanasu-ecd/kanasu-go-api/internal/utils"
)

// EvaluationHandler wires legacy evaluation HTTP routes.
type EvaluationHandler struct {
	evaluations service.EvaluationService
	responses   service.ResponseService
	logger      zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(evaluations service.EvaluationService, responses service.ResponseService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		responses:   responses,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation endpoints to the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Post("/batch", h.submitBatch)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/responses", h.listResponses)
	router.Patch("/:id/grade", h.markGraded)
}

// create accepts a multipart form: teacher_id, student_id, topic_id,
// week_number plus audio and optional metadata files.
func (h *EvaluationHandler) create(c *fiber.Ctx) error {
	payload := dto.EvaluationCreateRequest{
		TeacherID: c.FormValue("teacher_id"),
		StudentID: c.FormValue("student_id"),
		TopicID:   c.FormValue("topic_id"),
	}
	if week := c.FormValue("week_number"); week != "" {
		parsed, err := strconv.Atoi(week)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "week_number must be an integer")
		}
		payload.WeekNumber = parsed
	}

	audioPath := ""
	if fileHeader, err := c.FormFile("audio"); err == nil {
		audioPath, err = saveMultipartFile(c, fileHeader)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "failed to stage audio file")
		}
	}
	metadataPath := ""
	if fileHeader, err := c.FormFile("metadata"); err == nil {
		metadataPath, err = saveMultipartFile(c, fileHeader)
		if err != nil {
			removeStaged(audioPath)
			return utils.SendError(c, fiber.StatusBadRequest, "failed to stage metadata file")
		}
	}

	evaluation, err := h.evaluations.Create(c.Context(), payload, audioPath, metadataPath)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation recorded", evaluation)
}

func (h *EvaluationHandler) submitBatch(c *fiber.Ctx) error {
	var payload dto.EvaluationBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.evaluations.SubmitBatch(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation submitted", evaluation)
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	evaluations, err := h.evaluations.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.evaluations.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) listResponses(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	responses, err := h.responses.ListByEvaluation(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "responses retrieved", responses)
}

func (h *EvaluationHandler) markGraded(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.evaluations.MarkGraded(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation grading updated", evaluation)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
