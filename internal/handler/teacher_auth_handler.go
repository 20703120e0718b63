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

// TeacherAuthHandler wires the teacher OTP login flow.
type TeacherAuthHandler struct {
	service service.TeacherAuthService
	logger  zerolog.Logger
}

// NewTeacherAuthHandler constructs the handler.
func NewTeacherAuthHandler(service service.TeacherAuthService, logger zerolog.Logger) *TeacherAuthHandler {
	return &TeacherAuthHandler{
		service: service,
		logger:  logger.With().Str("component", "teacher_auth_handler").Logger(),
	}
}

// Register attaches the public OTP endpoints to the router group.
func (h *TeacherAuthHandler) Register(router fiber.Router) {
	router.Post("/request-otp", h.requestOTP)
	router.Post("/verify-otp", h.verifyOTP)
}

// RegisterProtected attaches endpoints requiring a teacher token.
func (h *TeacherAuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.profile)
	router.Get("/anganwadi", h.anganwadi)
}

func (h *TeacherAuthHandler) requestOTP(c *fiber.Ctx) error {
	var payload dto.OTPRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.RequestOTP(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "otp dispatched", response)
}

func (h *TeacherAuthHandler) verifyOTP(c *fiber.Ctx) error {
	var payload dto.OTPVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	login, err := h.service.VerifyOTP(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", login)
}

func (h *TeacherAuthHandler) profile(c *fiber.Ctx) error {
	teacherID := userIDFromContext(c)
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing teacher identity")
	}

	profile, err := h.service.Profile(c.Context(), teacherID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *TeacherAuthHandler) anganwadi(c *fiber.Ctx) error {
	teacherID := userIDFromContext(c)
	if teacherID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing teacher identity")
	}

	anganwadi, err := h.service.Anganwadi(c.Context(), teacherID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "anganwadi retrieved", anganwadi)
}

func (h *TeacherAuthHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "teacher not found")
	case errors.Is(err, service.ErrInvalidOTP):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrTeacherNotAssigned):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
