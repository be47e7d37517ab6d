package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/handlers"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/middleware"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
)

// Services groups everything the routes need
type Services struct {
	Auth         *services.AuthService
	Chat         *services.ChatService
	Leave        *services.LeaveService
	Payroll      *services.PayrollService
	Training     *services.TrainingService
	Responder    *services.Responder
	Orchestrator *services.Orchestrator
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc Services) {
	healthHandler := handlers.NewHealthHandler("1.0.0")
	chatHandler := handlers.NewChatHandler(svc.Chat, svc.Responder)
	leaveHandler := handlers.NewLeaveHandler(svc.Leave)
	payrollHandler := handlers.NewPayrollHandler(svc.Payroll)
	trainingHandler := handlers.NewTrainingHandler(svc.Training)
	wsHandler := handlers.NewWSHandler(svc.Orchestrator)

	app.Get("/health", healthHandler.Check)

	// Realtime chat channel
	app.Get("/ws", wsHandler.Upgrade, websocket.New(wsHandler.Serve))

	// REST API (authenticated)
	api := app.Group("/api", middleware.RequireAuth(svc.Auth))

	chat := api.Group("/chat")
	chat.Get("/conversations", chatHandler.ListConversations)
	chat.Get("/conversations/:id/messages", chatHandler.ListMessages)
	chat.Post("/conversations/:id/archive", chatHandler.Archive)
	chat.Post("/feedback", chatHandler.SubmitFeedback)
	chat.Get("/suggestions", chatHandler.Suggestions)

	leaves := api.Group("/leaves")
	leaves.Get("/balance", leaveHandler.GetBalance)
	leaves.Get("/requests", leaveHandler.ListRequests)
	leaves.Post("/requests", leaveHandler.CreateRequest)
	leaves.Get("/stats", leaveHandler.Stats)

	payslips := api.Group("/payslips")
	payslips.Get("/", payrollHandler.ListPayslips)
	payslips.Get("/:id", payrollHandler.GetPayslip)
	payslips.Get("/:id/download", payrollHandler.DownloadPayslip)

	trainings := api.Group("/trainings")
	trainings.Get("/", trainingHandler.ListCatalog)
	trainings.Get("/enrollments", trainingHandler.ListEnrollments)
	trainings.Post("/enroll", trainingHandler.Enroll)

	// Approval endpoints are restricted to managers and HR
	approvals := leaves.Group("/requests/:id", middleware.RequireRole(models.RoleManager, models.RoleHR))
	approvals.Post("/approve", leaveHandler.Approve)
	approvals.Post("/reject", leaveHandler.Reject)
}
