package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/dto"
	"github.com/kanasu-ecd/kanasu-go-api/internal/middleware"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
	"github.com/kanasu-ecd/kanasu-go-api/internal/utils"
)

// AnganwadiHandler wires anganwadi HTTP routes.
type AnganwadiHandler struct {
	service service.AnganwadiService
	logger  zerolog.Logger
}

// NewAnganwadiHandler constructs the handler.
func NewAnganwadiHandler(service service.AnganwadiService, logger zerolog.Logger) *AnganwadiHandler {
	return &AnganwadiHandler{
		service: service,
		logger:  logger.With().Str("component", "anganwadi_handler").Logger(),
	}
}

// Register attaches anganwadi endpoints to the router group.
func (h *AnganwadiHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	// Deleting a center is restricted to administrators.
	router.Delete("/:id", middleware.WithAuth(h.delete, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
}

func (h *AnganwadiHandler) create(c *fiber.Ctx) error {
	var payload dto.AnganwadiCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	anganwadi, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "anganwadi created", anganwadi)
}

func (h *AnganwadiHandler) list(c *fiber.Ctx) error {
	anganwadis, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "anganwadis retrieved", anganwadis)
}

func (h *AnganwadiHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	anganwadi, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "anganwadi retrieved", anganwadi)
}

func (h *AnganwadiHandler) update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AnganwadiUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	anganwadi, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "anganwadi updated", anganwadi)
}

func (h *AnganwadiHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "anganwadi deleted", fiber.Map{"id": id})
}

func (h *AnganwadiHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAnganwadiNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "anganwadi not found")
	case errors.Is(err, service.ErrAnganwadiHasMembers):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
