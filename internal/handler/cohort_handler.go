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

// CohortHandler wires cohort and ranking HTTP routes.
type CohortHandler struct {
	cohorts  service.CohortService
	rankings service.RankingService
	logger   zerolog.Logger
}

// NewCohortHandler constructs the handler.
func NewCohortHandler(cohorts service.CohortService, rankings service.RankingService, logger zerolog.Logger) *CohortHandler {
	return &CohortHandler{
		cohorts:  cohorts,
		rankings: rankings,
		logger:   logger.With().Str("component", "cohort_handler").Logger(),
	}
}

// Register attaches cohort endpoints to the router group.
func (h *CohortHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
	router.Get("/:id/assessments", h.listAssessments)
	router.Get("/:id/rankings/:assessmentId", h.assessmentRanking)
	router.Get("/:id/rankings", h.persistedRanking)
	router.Post("/:id/rankings/update", h.updateRanks)
}

func (h *CohortHandler) create(c *fiber.Ctx) error {
	var payload dto.CohortCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	cohort, err := h.cohorts.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "cohort created", cohort)
}

func (h *CohortHandler) list(c *fiber.Ctx) error {
	cohorts, err := h.cohorts.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohorts retrieved", cohorts)
}

func (h *CohortHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.cohorts.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort retrieved", cohort)
}

func (h *CohortHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.cohorts.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort deleted", fiber.Map{"id": id})
}

func (h *CohortHandler) listAssessments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assessments, err := h.cohorts.ListAssessments(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort assessments retrieved", assessments)
}

func (h *CohortHandler) assessmentRanking(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	assessmentID, err := idParam(c, "assessmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rankings, err := h.rankings.CohortRanking(c.Context(), id, assessmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort rankings computed", rankings)
}

func (h *CohortHandler) persistedRanking(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rankings, err := h.rankings.PersistedRanking(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort rankings retrieved", rankings)
}

func (h *CohortHandler) updateRanks(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rankings, err := h.rankings.UpdateRanks(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "teacher ranks updated", rankings)
}

func (h *CohortHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCohortNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "cohort not found")
	case errors.Is(err, service.ErrCohortHasTeachers):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
