package services

import (
	"regexp"
	"strings"
)

// Intents understood by the assistant
const (
	IntentLeaveBalance = "leave_balance"
	IntentLeaveRequest = "leave_request"
	IntentPayroll      = "payroll"
	IntentTraining     = "training"
	IntentHelp         = "help"
	IntentGreeting     = "greeting"
	IntentGeneral      = "general"
)

// Classification confidences are fixed per rule; there is no learning
const (
	keywordConfidence  = 0.8
	fallbackConfidence = 0.5
)

// Classification is the result of intent detection on one utterance
type Classification struct {
	Intent     string
	Confidence float64
	Entities   map[string][]string
}

type intentRule struct {
	intent   string
	keywords []string
}

// Ordered rule table: the first rule with a matching keyword wins, so the
// slice order is the documented tie-break. Balance queries come before
// request queries because "solde de congés" contains keywords of both.
var intentRules = []intentRule{
	{IntentLeaveBalance, []string{"solde", "reste", "combien", "jours restant"}},
	{IntentLeaveRequest, []string{"congé", "vacances", "absence", "jour off", "repos"}},
	{IntentPayroll, []string{"salaire", "bulletin", "paie", "rémunération", "fiche de paie"}},
	{IntentTraining, []string{"formation", "cours", "apprentissage", "skill", "développement"}},
	{IntentHelp, []string{"aide", "help", "comment", "pourquoi", "?"}},
	{IntentGreeting, []string{"bonjour", "salut", "hello", "bonsoir", "hey"}},
}

var (
	dateEntityRe     = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4}|\d{1,2}/\d{1,2}|demain|lundi|mardi|mercredi|jeudi|vendredi)`)
	durationEntityRe = regexp.MustCompile(`(?i)(\d+)\s*(jours?|semaines?)`)
)

// Classifier maps free text to an intent and coarse entities. It is pure
// and deterministic: case-insensitive substring matching against the fixed
// rule table, never an external call.
type Classifier struct{}

// NewClassifier creates a new intent classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify detects the intent of an utterance. Unmatched text falls back to
// the general intent at low confidence.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)

	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return Classification{
					Intent:     rule.intent,
					Confidence: keywordConfidence,
					Entities:   c.ExtractEntities(text),
				}
			}
		}
	}

	return Classification{
		Intent:     IntentGeneral,
		Confidence: fallbackConfidence,
		Entities:   c.ExtractEntities(text),
	}
}

// ExtractEntities pulls date-like and duration-like tokens from the text.
// Extraction is best-effort; an empty map simply means nothing matched.
func (c *Classifier) ExtractEntities(text string) map[string][]string {
	entities := make(map[string][]string)

	if dates := dateEntityRe.FindAllString(text, -1); len(dates) > 0 {
		entities["dates"] = dates
	}
	if durations := durationEntityRe.FindAllString(text, -1); len(durations) > 0 {
		entities["durations"] = durations
	}

	return entities
}
