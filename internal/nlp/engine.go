package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/carewell-ai/care-assistant/internal/knowledge"
)

// Intent is the coarse category of a user message.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentAppointment Intent = "appointment"
	IntentMedication  Intent = "medication"
	IntentSymptom     Intent = "symptom"
	IntentHealthData  Intent = "health_data"
	IntentEmergency   Intent = "emergency"
	IntentUnknown     Intent = "unknown"
)

// Entities holds the structured values pulled out of a message once its
// intent is known. Fields are only populated for the intent they belong to;
// an absent value is the zero value, never an error.
type Entities struct {
	Date     string
	Time     string
	Doctor   string
	Symptoms []string
}

// IsEmpty reports whether no entity was extracted.
func (e Entities) IsEmpty() bool {
	return e.Date == "" && e.Time == "" && e.Doctor == "" && len(e.Symptoms) == 0
}

var (
	datePattern   = regexp.MustCompile(`(?i)(?:on|for) (january|february|march|april|may|june|july|august|september|october|november|december) (\d{1,2})(?:st|nd|rd|th)?`)
	timePattern   = regexp.MustCompile(`(?i)(?:at) (\d{1,2})(?::(\d{2}))? ?(am|pm)`)
	doctorPattern = regexp.MustCompile(`(?i)(?:with) (?:dr\.?) ([a-z]+)`)
)

// Engine scores messages against the pattern store and extracts entities.
type Engine struct {
	store *knowledge.Store
}

// NewEngine creates an engine backed by the given knowledge store.
func NewEngine(store *knowledge.Store) *Engine {
	return &Engine{store: store}
}

// DetectIntent returns the best-scoring intent for the message and its score.
//
// Each pattern hit scores matches/tokens; the highest score wins and ties keep
// the first intent encountered. Any configured emergency phrase appearing in
// the lower-cased message overrides the pattern result with ("emergency", 1.0).
// A message matching nothing yields ("unknown", 0.0).
func (e *Engine) DetectIntent(message string) (Intent, float64) {
	bestIntent := IntentUnknown
	bestScore := 0.0

	tokens := len(strings.Fields(message))
	if tokens == 0 {
		// Guard against empty or all-whitespace input.
		tokens = 1
	}

	for _, ip := range e.store.Intents() {
		for _, pattern := range ip.Patterns {
			matches := pattern.FindAllString(message, -1)
			if len(matches) == 0 {
				continue
			}
			score := float64(len(matches)) / float64(tokens)
			if score > bestScore {
				bestScore = score
				bestIntent = Intent(ip.Intent)
			}
		}
	}

	lowered := strings.ToLower(message)
	for _, phrase := range e.store.EmergencyPhrases() {
		if strings.Contains(lowered, phrase) {
			return IntentEmergency, 1.0
		}
	}

	return bestIntent, bestScore
}

// ExtractEntities pulls structured fields out of the message for the given
// intent. Appointment messages yield date/time/doctor; symptom messages yield
// every knowledge-base symptom mentioned, in knowledge-base order and without
// deduplication across conditions. Other intents yield nothing.
func (e *Engine) ExtractEntities(message string, intent Intent) Entities {
	var entities Entities

	switch intent {
	case IntentAppointment:
		if m := datePattern.FindStringSubmatch(message); m != nil {
			entities.Date = fmt.Sprintf("%s %s", m[1], m[2])
		}
		if m := timePattern.FindStringSubmatch(message); m != nil {
			hour, _ := strconv.Atoi(m[1])
			minute := m[2]
			if minute == "" {
				minute = "00"
			}
			entities.Time = fmt.Sprintf("%d:%s %s", hour, minute, strings.ToLower(m[3]))
		}
		if m := doctorPattern.FindStringSubmatch(message); m != nil {
			entities.Doctor = strings.ToLower(m[1])
		}

	case IntentSymptom:
		lowered := strings.ToLower(message)
		for _, condition := range e.store.Conditions() {
			for _, symptom := range condition.Symptoms {
				if strings.Contains(lowered, symptom) {
					entities.Symptoms = append(entities.Symptoms, symptom)
				}
			}
		}
	}

	return entities
}
