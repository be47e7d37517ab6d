package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// completionTimeout bounds the external completion call; on expiry the
// deterministic fallback answers instead.
const completionTimeout = 10 * time.Second

// Reply is a structured bot answer: rendered text plus a menu of suggested
// follow-up actions
type Reply struct {
	Content  string                   `json:"content"`
	Actions  []models.SuggestedAction `json:"actions,omitempty"`
	Metadata map[string]interface{}   `json:"metadata,omitempty"`
}

// Responder renders the bot reply for a classified utterance. Domain intents
// are answered from the engines; anything else goes through the two-tier
// fallback (completion service, then canned text), so the user always gets a
// reply.
type Responder struct {
	leave    *LeaveService
	payroll  *PayrollService
	training *TrainingService
	ai       Completer
}

// NewResponder creates a new response generator. The completer may be nil
// when no completion service is configured; the canned fallback then answers
// general questions directly.
func NewResponder(leave *LeaveService, payroll *PayrollService, training *TrainingService, ai Completer) *Responder {
	return &Responder{leave: leave, payroll: payroll, training: training, ai: ai}
}

// Generate produces the reply for one classified message
func (r *Responder) Generate(ctx context.Context, userID, intent string, entities map[string][]string, rawText string) *Reply {
	switch intent {
	case IntentGreeting:
		return greetingReply()
	case IntentHelp:
		return helpReply()
	case IntentLeaveBalance:
		return r.leaveBalanceReply(ctx, userID)
	case IntentLeaveRequest:
		return r.leaveRequestReply(ctx, userID)
	case IntentPayroll:
		return r.payrollReply(ctx, userID)
	case IntentTraining:
		return r.trainingReply(ctx, userID)
	default:
		return r.generalReply(ctx, rawText)
	}
}

func greetingReply() *Reply {
	return &Reply{
		Content: "Bonjour ! Je suis votre assistant RH. Comment puis-je vous aider aujourd'hui ?",
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Mes congés", Action: "view_leaves"},
			{ID: "2", Label: "Ma paie", Action: "view_payslip"},
			{ID: "3", Label: "Formations", Action: "view_trainings"},
			{ID: "4", Label: "Aide", Action: "help"},
		},
	}
}

func helpReply() *Reply {
	return &Reply{
		Content: `Je peux vous aider avec :
• **Congés** : Consulter vos soldes, faire des demandes
• **Paie** : Accéder à vos bulletins, historique
• **Formations** : Catalogue, inscriptions
• **Questions générales** : Politiques RH, procédures

Que souhaitez-vous faire ?`,
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Mes congés", Action: "view_leaves"},
			{ID: "2", Label: "Ma paie", Action: "view_payslip"},
			{ID: "3", Label: "Formations", Action: "view_trainings"},
		},
	}
}

// unavailableReply converts a collaborator failure into a user-readable
// degraded answer; infrastructure errors never surface on the channel.
func unavailableReply(what string) *Reply {
	return &Reply{
		Content: fmt.Sprintf("Désolé, je n'arrive pas à récupérer %s en ce moment. Veuillez réessayer dans quelques instants.", what),
	}
}

func (r *Responder) leaveBalanceReply(ctx context.Context, userID string) *Reply {
	balance, err := r.leave.GetBalance(ctx, userID)
	if err != nil {
		log.Printf("Leave balance lookup failed for %s: %v", userID, err)
		return unavailableReply("vos informations de congés")
	}
	recent, err := r.leave.GetUserRequests(ctx, userID, 3)
	if err != nil {
		recent = nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 **Vos congés :**\n")
	fmt.Fprintf(&b, "• **Congés payés :** %d jours\n", balance.PaidLeave)
	fmt.Fprintf(&b, "• **RTT :** %d jours\n", balance.RTT)
	fmt.Fprintf(&b, "• **Congés maladie :** %d jours\n", balance.SickLeave)
	if len(recent) > 0 {
		b.WriteString("\n**Dernières demandes :**\n")
		for _, req := range recent {
			fmt.Fprintf(&b, "• %dj %s - %s\n", req.Days, strings.ToLower(req.Type), req.Status)
		}
	}
	b.WriteString("\nQue souhaitez-vous faire ?")

	return &Reply{
		Content: b.String(),
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Faire une demande", Action: "request_leave"},
			{ID: "2", Label: "Voir l'historique", Action: "view_leaves"},
		},
		Metadata: map[string]interface{}{"balance": balance},
	}
}

func (r *Responder) leaveRequestReply(ctx context.Context, userID string) *Reply {
	balance, err := r.leave.GetBalance(ctx, userID)
	if err != nil {
		log.Printf("Leave balance lookup failed for %s: %v", userID, err)
		return unavailableReply("vos informations de demandes de congés")
	}

	content := fmt.Sprintf(`📝 **Demande de congés :**
• **Congés disponibles :** %d jours
• **RTT disponibles :** %d jours

Pour faire votre demande, utilisez les boutons ci-dessous ou précisez le type de congé et les dates souhaitées.`,
		balance.PaidLeave, balance.RTT)

	return &Reply{
		Content: content,
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Nouvelle demande", Action: "request_leave"},
			{ID: "2", Label: "Voir le solde", Action: "view_leaves"},
		},
		Metadata: map[string]interface{}{"balance": balance},
	}
}

func (r *Responder) payrollReply(ctx context.Context, userID string) *Reply {
	payslips, err := r.payroll.GetUserPayslips(ctx, userID, 3)
	if err != nil {
		log.Printf("Payslip lookup failed for %s: %v", userID, err)
		return unavailableReply("vos informations de paie")
	}
	if len(payslips) == 0 {
		return &Reply{Content: "Aucun bulletin de paie disponible pour le moment."}
	}

	latest := payslips[0]
	content := fmt.Sprintf(`💰 **Votre paie :**
• **Dernier bulletin :** %s
• **Salaire net :** %.2f€
• **Salaire brut :** %.2f€

Que voulez-vous consulter ?`, latest.Period, latest.NetSalary, latest.GrossSalary)

	return &Reply{
		Content: content,
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Télécharger bulletin", Action: "download_payslip", Params: map[string]interface{}{"payslipId": latest.ID}},
			{ID: "2", Label: "Historique paie", Action: "view_payslip"},
		},
		Metadata: map[string]interface{}{"payslips": payslips},
	}
}

func (r *Responder) trainingReply(ctx context.Context, userID string) *Reply {
	catalog, err := r.training.GetCatalog(ctx)
	if err != nil {
		log.Printf("Training catalog lookup failed: %v", err)
		return unavailableReply("le catalogue de formations")
	}

	var recommended []*models.Training
	for _, t := range catalog {
		if t.Recommended {
			recommended = append(recommended, t)
		}
		if len(recommended) == 3 {
			break
		}
	}

	var b strings.Builder
	b.WriteString("🎓 **Formations disponibles :**\n\n")
	if len(recommended) > 0 {
		b.WriteString("**Recommandées pour vous :**\n")
		for _, t := range recommended {
			fmt.Fprintf(&b, "• **%s** (%s) - %d places\n", t.Title, t.Duration, t.AvailableSpots)
		}
	} else {
		b.WriteString("Aucune formation recommandée pour le moment.\n")
	}
	b.WriteString("\nVoulez-vous explorer le catalogue ?")

	return &Reply{
		Content: b.String(),
		Actions: []models.SuggestedAction{
			{ID: "1", Label: "Voir le catalogue", Action: "view_trainings"},
			{ID: "2", Label: "M'inscrire", Action: "enroll_training"},
		},
		Metadata: map[string]interface{}{"trainings": recommended},
	}
}

// generalReply handles unclassified input: ask the completion service under
// a bounded timeout, and fall back to canned text keyed by coarse keywords
// when it fails or expires.
func (r *Responder) generalReply(ctx context.Context, rawText string) *Reply {
	if r.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, completionTimeout)
		defer cancel()

		content, err := r.ai.Complete(aiCtx, rawText)
		if err == nil && content != "" {
			return &Reply{
				Content: content,
				Actions: generalActions(),
			}
		}
		log.Printf("Completion fallback failed, using canned reply: %v", err)
	}

	return cannedReply(rawText)
}

// cannedReply is the deterministic final tier of the fallback
func cannedReply(rawText string) *Reply {
	lower := strings.ToLower(rawText)
	switch {
	case strings.Contains(lower, "bonjour") || strings.Contains(lower, "salut") || strings.Contains(lower, "hello"):
		return greetingReply()
	case strings.Contains(lower, "aide") || strings.Contains(lower, "help"):
		return helpReply()
	default:
		return &Reply{
			Content: "Je comprends votre demande. Pouvez-vous préciser ce que vous cherchez ? Je peux vous aider avec vos congés, votre paie, les formations disponibles ou répondre à vos questions RH.",
			Actions: generalActions(),
		}
	}
}

// Suggestions returns input chips for the client composer, personalized by
// the last detected intent. Always exactly four entries.
func (r *Responder) Suggestions(lastIntent string) []string {
	if lastIntent == IntentLeaveBalance {
		return []string{
			"Je veux poser 5 jours en août",
			"Combien de RTT me reste-t-il ?",
			"Voir mon historique de congés",
			"Annuler ma dernière demande",
		}
	}
	return []string{
		"Quel est mon solde de congés ?",
		"Je voudrais poser des congés",
		"Où est mon dernier bulletin de paie ?",
		"Quelles formations sont disponibles ?",
	}
}

func generalActions() []models.SuggestedAction {
	return []models.SuggestedAction{
		{ID: "1", Label: "Congés", Action: "view_leaves"},
		{ID: "2", Label: "Paie", Action: "view_payslip"},
		{ID: "3", Label: "Formations", Action: "view_trainings"},
		{ID: "4", Label: "Aide générale", Action: "help"},
	}
}
