package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// PayrollHandler serves the REST payslip endpoints
type PayrollHandler struct {
	payroll *services.PayrollService
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(payroll *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payroll}
}

// ListPayslips returns the authenticated user's payslips, newest first
func (h *PayrollHandler) ListPayslips(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	payslips, err := h.payroll.GetUserPayslips(c.Context(), userID, 12)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer les bulletins de paie")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"payslips": payslips,
	})
}

// GetPayslip returns one payslip, scoped to the authenticated user
func (h *PayrollHandler) GetPayslip(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	payslipID := c.Params("id")

	payslip, err := h.payroll.GetPayslip(c.Context(), userID, payslipID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Bulletin de paie introuvable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer le bulletin de paie")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"payslip": payslip,
	})
}

// DownloadPayslip returns a short-lived download link for one payslip
func (h *PayrollHandler) DownloadPayslip(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	payslipID := c.Params("id")

	info, err := h.payroll.GenerateDownloadURL(c.Context(), userID, payslipID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Bulletin de paie introuvable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de générer le lien de téléchargement")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"download": info,
	})
}
