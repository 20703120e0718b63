package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
	"github.com/kanasu-ecd/kanasu-go-api/internal/utils"
)

// ResponseHandler wires student response and scoring HTTP routes.
type ResponseHandler struct {
	responses service.ResponseService
	scoring   service.ScoringService
	logger    zerolog.Logger
}

// NewResponseHandler constructs the handler.
func NewResponseHandler(responses service.ResponseService, scoring service.ScoringService, logger zerolog.Logger) *ResponseHandler {
	return &ResponseHandler{
		responses: responses,
		scoring:   scoring,
		logger:    logger.With().Str("component", "response_handler").Logger(),
	}
}

// Register attaches response endpoints to the router group.
func (h *ResponseHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Post("/batch", h.createBatch)
	router.Get("/student/:studentId", h.listByStudent)
	router.Get("/:id", h.get)
	router.Post("/:id/score", h.score)
	router.Post("/:id/auto-score", h.autoScore)
}

func (h *ResponseHandler) create(c *fiber.Ctx) error {
	var payload dto.ResponseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.responses.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "response recorded", response)
}

func (h *ResponseHandler) createBatch(c *fiber.Ctx) error {
	var payload dto.ResponseBatchCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	responses, err := h.responses.CreateBatch(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "responses recorded", responses)
}

func (h *ResponseHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := idParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	responses, err := h.responses.ListByStudent(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "responses retrieved", responses)
}

func (h *ResponseHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.responses.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response retrieved", response)
}

func (h *ResponseHandler) score(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.GradedBy == nil {
		if grader := userIDFromContext(c); grader != "" {
			payload.GradedBy = &grader
		}
	}

	response, err := h.scoring.Score(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response scored", response)
}

func (h *ResponseHandler) autoScore(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AutoScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, response, err := h.scoring.AutoScore(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "response auto-scored", fiber.Map{
		"result":   result,
		"response": response,
	})
}

func (h *ResponseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrResponseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "response not found")
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.Is(err, service.ErrScoreOutOfRange),
		errors.Is(err, service.ErrQuestionHasNoOptions):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
