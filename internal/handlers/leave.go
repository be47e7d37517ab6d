package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// LeaveHandler serves the REST leave endpoints
type LeaveHandler struct {
	leave *services.LeaveService
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(leave *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

// GetBalance returns the authenticated user's current-year balance
func (h *LeaveHandler) GetBalance(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	balance, err := h.leave.GetBalance(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer le solde de congés")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"balance": balance,
	})
}

// ListRequests returns the authenticated user's leave requests
func (h *LeaveHandler) ListRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	requests, err := h.leave.GetUserRequests(c.Context(), userID, 10)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer les demandes")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"requests": requests,
	})
}

// createRequestBody is the JSON payload for a new leave request
type createRequestBody struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// CreateRequest creates a leave request for the authenticated user
func (h *LeaveHandler) CreateRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var body createRequestBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	startDate, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Date de début invalide (format attendu: AAAA-MM-JJ)")
	}
	endDate, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Date de fin invalide (format attendu: AAAA-MM-JJ)")
	}

	request, err := h.leave.CreateRequest(c.Context(), userID, body.Type, startDate, endDate, body.Reason)
	if err != nil {
		return leaveErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// Approve approves a pending request (manager/HR endpoint)
func (h *LeaveHandler) Approve(c *fiber.Ctx) error {
	approverID := c.Locals("userID").(string)
	requestID := c.Params("id")

	request, err := h.leave.ApproveRequest(c.Context(), requestID, approverID)
	if err != nil {
		return leaveErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// Reject rejects a pending request (manager/HR endpoint)
func (h *LeaveHandler) Reject(c *fiber.Ctx) error {
	approverID := c.Locals("userID").(string)
	requestID := c.Params("id")

	request, err := h.leave.RejectRequest(c.Context(), requestID, approverID)
	if err != nil {
		return leaveErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// Stats returns the authenticated user's leave statistics
func (h *LeaveHandler) Stats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	balance, stats, err := h.leave.GetStats(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer les statistiques")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"balance": balance,
		"stats":   stats,
	})
}

// leaveErrorResponse maps workflow errors to HTTP statuses: business-rule
// violations become 4xx with readable messages, everything else is a 500.
func leaveErrorResponse(c *fiber.Ctx, err error) error {
	var insufficient *services.InsufficientBalanceError
	var invalidRange *services.InvalidRangeError
	var invalidState *services.InvalidStateError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success":   false,
			"error":     insufficient.Error(),
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.As(err, &invalidRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   invalidRange.Error(),
		})
	case errors.As(err, &invalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   invalidState.Error(),
		})
	case errors.Is(err, storage.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Demande introuvable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Erreur interne")
	}
}
