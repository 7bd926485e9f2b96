package knowledge

import "regexp"

// Condition is a known condition with its symptom list and self-care advice.
type Condition struct {
	Name     string
	Symptoms []string
	SelfCare string
}

// IntentPatterns associates an intent name with its compiled match patterns.
// Pattern order within an intent, and intent order within the store, are
// significant: the dialog pipeline keeps the first best-scoring intent.
type IntentPatterns struct {
	Intent   string
	Patterns []*regexp.Regexp
}

// Store holds the fixed condition knowledge base, the emergency phrase list,
// and the intent pattern table. It is constructed once at startup and never
// mutated afterwards, so it is safe for concurrent readers.
type Store struct {
	conditions       []Condition
	emergencyPhrases []string
	intents          []IntentPatterns
}

// NewStore builds the default knowledge and pattern store.
func NewStore() *Store {
	return &Store{
		conditions: []Condition{
			{
				Name:     "cold",
				Symptoms: []string{"runny nose", "sore throat", "cough", "congestion"},
				SelfCare: "Rest, drink fluids, and take over-the-counter cold medications as needed. Contact a doctor if symptoms persist beyond 10 days.",
			},
			{
				Name:     "flu",
				Symptoms: []string{"fever", "body aches", "fatigue", "cough"},
				SelfCare: "Rest, stay hydrated, and take fever reducers. Contact a doctor if you have difficulty breathing or symptoms are severe.",
			},
		},
		emergencyPhrases: []string{
			"chest pain",
			"difficulty breathing",
			"severe bleeding",
			"sudden severe headache",
		},
		intents: []IntentPatterns{
			{
				Intent: "greeting",
				Patterns: compile(
					`(?i)hello|hi|hey|greetings`,
					`(?i)good (morning|afternoon|evening)`,
				),
			},
			{
				Intent: "appointment",
				Patterns: compile(
					`(?i)schedule|book|make|set up.*appointment`,
					`(?i)see a doctor|visit|consultation`,
				),
			},
			{
				Intent: "medication",
				Patterns: compile(
					`(?i)medication|medicine|prescription|refill`,
					`(?i)remind.*take (my )?medication`,
				),
			},
			{
				Intent: "symptom",
				Patterns: compile(
					`(?i)I (have|am experiencing|feel|suffering from)`,
					`(?i)symptom|pain|discomfort|fever|cough|headache`,
				),
			},
			{
				Intent: "health_data",
				Patterns: compile(
					`(?i)track|record|log|monitor|update.*(blood pressure|weight|glucose|exercise)`,
					`(?i)my health (data|information|stats|numbers)`,
				),
			},
		},
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// Conditions returns the condition list in knowledge-base order.
func (s *Store) Conditions() []Condition {
	return s.conditions
}

// EmergencyPhrases returns the fixed emergency phrase list.
func (s *Store) EmergencyPhrases() []string {
	return s.emergencyPhrases
}

// Intents returns the intent pattern table in priority order.
func (s *Store) Intents() []IntentPatterns {
	return s.intents
}

// FindCondition returns the condition with the given name, if known.
func (s *Store) FindCondition(name string) (Condition, bool) {
	for _, c := range s.conditions {
		if c.Name == name {
			return c, true
		}
	}
	return Condition{}, false
}
