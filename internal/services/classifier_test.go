package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntents(t *testing.T) {
	classifier := NewClassifier()

	cases := []struct {
		name       string
		text       string
		intent     string
		confidence float64
	}{
		{"balance question", "Quel est mon solde de congés ?", IntentLeaveBalance, 0.8},
		{"remaining days", "Combien de jours me reste-t-il ?", IntentLeaveBalance, 0.8},
		{"leave request", "Je veux poser des vacances en août", IntentLeaveRequest, 0.8},
		{"leave keyword uppercase", "CONGÉ la semaine prochaine", IntentLeaveRequest, 0.8},
		{"payslip", "Où trouver mon bulletin de paie ?", IntentPayroll, 0.8},
		{"salary", "Question sur mon salaire", IntentPayroll, 0.8},
		{"training", "Je cherche une formation en anglais", IntentTraining, 0.8},
		{"help", "J'ai besoin d'aide", IntentHelp, 0.8},
		{"greeting", "Bonjour !", IntentGreeting, 0.8},
		{"unmatched", "Les tickets restaurant sont en retard", IntentGeneral, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := classifier.Classify(tc.text)
			assert.Equal(t, tc.intent, result.Intent)
			assert.Equal(t, tc.confidence, result.Confidence)
		})
	}
}

// "solde de congés" carries keywords of both balance and request intents;
// the rule order must resolve it as a balance query.
func TestClassifyBalanceWinsOverRequest(t *testing.T) {
	classifier := NewClassifier()

	result := classifier.Classify("Quel est mon solde de congés ?")
	assert.Equal(t, IntentLeaveBalance, result.Intent)
}

func TestExtractEntities(t *testing.T) {
	classifier := NewClassifier()

	t.Run("dates and durations", func(t *testing.T) {
		entities := classifier.ExtractEntities("Je pose 3 jours du 15/08/2026 au lundi suivant")
		assert.Contains(t, entities["dates"], "15/08/2026")
		assert.Contains(t, entities["dates"], "lundi")
		assert.Contains(t, entities["durations"], "3 jours")
	})

	t.Run("relative date", func(t *testing.T) {
		entities := classifier.ExtractEntities("Je serai absent demain")
		assert.Equal(t, []string{"demain"}, entities["dates"])
	})

	t.Run("weeks duration", func(t *testing.T) {
		entities := classifier.ExtractEntities("2 semaines en juillet")
		assert.Equal(t, []string{"2 semaines"}, entities["durations"])
	})

	t.Run("nothing matched", func(t *testing.T) {
		entities := classifier.ExtractEntities("Bonjour")
		assert.Empty(t, entities)
	})
}
