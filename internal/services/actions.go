package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// Quick actions the router understands. Anything else falls into the
// neutral default branch.
const (
	ActionViewLeaves      = "view_leaves"
	ActionRequestLeave    = "request_leave"
	ActionViewPayslip     = "view_payslip"
	ActionDownloadPayslip = "download_payslip"
	ActionViewTrainings   = "view_trainings"
	ActionEnrollTraining  = "enroll_training"
)

// ActionResult is the outcome of one quick action
type ActionResult struct {
	Result  interface{} `json:"result,omitempty"`
	Message string      `json:"message"`
}

// ActionRouter maps structured quick-action commands straight to engine
// calls, bypassing classification. It is a total function over the action
// enumeration: unknown names get a neutral message, never an error.
type ActionRouter struct {
	leave    *LeaveService
	payroll  *PayrollService
	training *TrainingService
}

// NewActionRouter creates a new action router
func NewActionRouter(leave *LeaveService, payroll *PayrollService, training *TrainingService) *ActionRouter {
	return &ActionRouter{leave: leave, payroll: payroll, training: training}
}

// Route executes one quick action for a user
func (a *ActionRouter) Route(ctx context.Context, userID, action string, params map[string]interface{}) (*ActionResult, error) {
	switch action {
	case ActionViewLeaves:
		return a.viewLeaves(ctx, userID)
	case ActionRequestLeave:
		return a.requestLeave(ctx, userID, params)
	case ActionViewPayslip, ActionDownloadPayslip:
		return a.payslip(ctx, userID, action, params)
	case ActionViewTrainings:
		return a.viewTrainings(ctx, userID)
	case ActionEnrollTraining:
		return a.enrollTraining(ctx, userID, params)
	default:
		log.Printf("Unknown quick action %q from user %s", action, userID)
		return &ActionResult{Message: "Action non reconnue. Comment puis-je vous aider ?"}, nil
	}
}

func (a *ActionRouter) viewLeaves(ctx context.Context, userID string) (*ActionResult, error) {
	balance, err := a.leave.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	requests, err := a.leave.GetUserRequests(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf(`📅 **Vos congés actualisés :**
• Congés payés : %d jours
• RTT : %d jours
• Dernière mise à jour : %s`,
		balance.PaidLeave, balance.RTT, balance.LastUpdate.Format("02/01/2006"))

	return &ActionResult{
		Result:  map[string]interface{}{"balance": balance, "requests": requests},
		Message: message,
	}, nil
}

func (a *ActionRouter) requestLeave(ctx context.Context, userID string, params map[string]interface{}) (*ActionResult, error) {
	if len(params) == 0 {
		return &ActionResult{Message: `📝 **Demande de congés :**
Pour faire votre demande, précisez :
• Type de congé (congés payés, RTT, maladie)
• Dates souhaitées
• Motif (optionnel)`}, nil
	}

	leaveType, _ := params["type"].(string)
	startRaw, _ := params["startDate"].(string)
	endRaw, _ := params["endDate"].(string)
	reason, _ := params["reason"].(string)

	startDate, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return nil, &InvalidRangeError{Reason: "date de début invalide"}
	}
	endDate, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return nil, &InvalidRangeError{Start: startDate, Reason: "date de fin invalide"}
	}

	request, err := a.leave.CreateRequest(ctx, userID, leaveType, startDate, endDate, reason)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf(`✅ **Demande de congés créée !**
• Type : %s
• Période : %s - %s
• Durée : %d jour(s)
• Statut : %s`,
		request.Type,
		request.StartDate.Format("02/01/2006"), request.EndDate.Format("02/01/2006"),
		request.Days, request.Status)

	return &ActionResult{
		Result:  map[string]interface{}{"request": request},
		Message: message,
	}, nil
}

func (a *ActionRouter) payslip(ctx context.Context, userID, action string, params map[string]interface{}) (*ActionResult, error) {
	payslipID, _ := params["payslipId"].(string)

	if action == ActionDownloadPayslip && payslipID != "" {
		info, err := a.payroll.GenerateDownloadURL(ctx, userID, payslipID)
		if err != nil {
			return nil, err
		}
		message := fmt.Sprintf(`📄 **Bulletin de paie prêt !**
Votre bulletin de %s est disponible au téléchargement.`, info.Payslip.Period)
		return &ActionResult{Result: info, Message: message}, nil
	}

	payslips, err := a.payroll.GetUserPayslips(ctx, userID, 12)
	if err != nil {
		return nil, err
	}

	message := "💰 **Vos bulletins de paie :**\n"
	for _, p := range payslips {
		message += fmt.Sprintf("• %s - %.2f€ net\n", p.Period, p.NetSalary)
	}

	return &ActionResult{
		Result:  map[string]interface{}{"payslips": payslips},
		Message: message,
	}, nil
}

func (a *ActionRouter) viewTrainings(ctx context.Context, userID string) (*ActionResult, error) {
	catalog, err := a.training.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := a.training.GetUserTrainings(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := "🎓 **Formations recommandées :**\n"
	for _, t := range catalog {
		if t.Recommended {
			message += fmt.Sprintf("• **%s** (%s) - %d places disponibles\n", t.Title, t.Duration, t.AvailableSpots)
		}
	}

	return &ActionResult{
		Result:  map[string]interface{}{"catalog": catalog, "enrollments": enrollments},
		Message: message,
	}, nil
}

func (a *ActionRouter) enrollTraining(ctx context.Context, userID string, params map[string]interface{}) (*ActionResult, error) {
	trainingID, _ := params["trainingId"].(string)
	if trainingID == "" {
		return &ActionResult{Message: "Précisez la formation à laquelle vous souhaitez vous inscrire."}, nil
	}

	enrollment, err := a.training.Enroll(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}

	message := `🎓 **Inscription confirmée !**
Votre inscription a été enregistrée avec succès.
Vous recevrez un email de confirmation avec les détails.`
	if enrollment.Status == models.EnrollmentWaitlist {
		message = `🎓 **Inscription en liste d'attente**
La session est complète ; vous serez notifié si une place se libère.`
	}

	return &ActionResult{
		Result:  map[string]interface{}{"enrollment": enrollment},
		Message: message,
	}, nil
}
