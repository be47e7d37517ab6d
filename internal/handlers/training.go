package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// TrainingHandler serves the REST training endpoints
type TrainingHandler struct {
	training *services.TrainingService
}

// NewTrainingHandler creates a new training handler
func NewTrainingHandler(training *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

// ListCatalog returns the training catalog
func (h *TrainingHandler) ListCatalog(c *fiber.Ctx) error {
	catalog, err := h.training.GetCatalog(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer le catalogue de formations")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"trainings": catalog,
	})
}

// ListEnrollments returns the authenticated user's enrollments
func (h *TrainingHandler) ListEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	enrollments, err := h.training.GetUserTrainings(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer vos formations")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"enrollments": enrollments,
	})
}

// Enroll registers the authenticated user on a training session
func (h *TrainingHandler) Enroll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var body struct {
		TrainingID string `json:"training_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.TrainingID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Identifiant de formation requis")
	}

	enrollment, err := h.training.Enroll(c.Context(), userID, body.TrainingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Formation introuvable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de vous inscrire à la formation")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"enrollment": enrollment,
	})
}
