package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carewell-ai/care-assistant/internal/knowledge"
)

func newTestEngine() *Engine {
	return NewEngine(knowledge.NewStore())
}

func TestDetectIntent(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name       string
		message    string
		wantIntent Intent
	}{
		{"hello", "hello there", IntentGreeting},
		{"good morning", "good morning to you", IntentGreeting},
		{"book appointment", "I want to book an appointment", IntentAppointment},
		{"see doctor", "can I see a doctor tomorrow", IntentAppointment},
		{"medication refill", "I need a prescription refill", IntentMedication},
		{"symptom fever", "I have a fever and a headache", IntentSymptom},
		{"health data", "please show my health stats", IntentHealthData},
		{"gibberish", "qwerty zxcvb", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, score := engine.DetectIntent(tt.message)
			assert.Equal(t, tt.wantIntent, intent)
			if tt.wantIntent == IntentUnknown {
				assert.Equal(t, 0.0, score)
			} else {
				assert.Greater(t, score, 0.0)
			}
		})
	}
}

func TestDetectIntent_EmergencyOverridesPatterns(t *testing.T) {
	engine := newTestEngine()

	messages := []string{
		"I have chest pain",
		"hello, I am having difficulty breathing",
		"there is SEVERE BLEEDING everywhere",
		"book an appointment, sudden severe headache",
	}

	for _, msg := range messages {
		intent, score := engine.DetectIntent(msg)
		assert.Equal(t, IntentEmergency, intent, "message: %s", msg)
		assert.Equal(t, 1.0, score, "message: %s", msg)
	}
}

func TestDetectIntent_NoMatch(t *testing.T) {
	engine := newTestEngine()

	intent, score := engine.DetectIntent("zzz qqq")
	assert.Equal(t, IntentUnknown, intent)
	assert.Equal(t, 0.0, score)
}

func TestDetectIntent_WhitespaceOnly(t *testing.T) {
	engine := newTestEngine()

	// Must not panic or divide by zero.
	intent, score := engine.DetectIntent("   \t  ")
	assert.Equal(t, IntentUnknown, intent)
	assert.Equal(t, 0.0, score)
}

func TestDetectIntent_Idempotent(t *testing.T) {
	engine := newTestEngine()

	msg := "I want to book an appointment for january 5th"
	intent1, score1 := engine.DetectIntent(msg)
	intent2, score2 := engine.DetectIntent(msg)
	assert.Equal(t, intent1, intent2)
	assert.Equal(t, score1, score2)
}

func TestExtractEntities_Appointment(t *testing.T) {
	engine := newTestEngine()

	entities := engine.ExtractEntities("book an appointment for january 5th at 3pm with Dr. Smith", IntentAppointment)
	assert.Equal(t, "january 5", entities.Date)
	assert.Equal(t, "3:00 pm", entities.Time)
	assert.Equal(t, "smith", entities.Doctor)
}

func TestExtractEntities_AppointmentPartial(t *testing.T) {
	engine := newTestEngine()

	entities := engine.ExtractEntities("schedule an appointment on march 12", IntentAppointment)
	assert.Equal(t, "march 12", entities.Date)
	assert.Empty(t, entities.Time)
	assert.Empty(t, entities.Doctor)

	entities = engine.ExtractEntities("book something at 10:30 am", IntentAppointment)
	assert.Empty(t, entities.Date)
	assert.Equal(t, "10:30 am", entities.Time)
}

func TestExtractEntities_Symptoms(t *testing.T) {
	engine := newTestEngine()

	entities := engine.ExtractEntities("I have a runny nose and cough", IntentSymptom)
	assert.Contains(t, entities.Symptoms, "runny nose")
	assert.Contains(t, entities.Symptoms, "cough")
	// "cough" appears in both the cold and flu symptom lists, so it is
	// collected once per condition.
	count := 0
	for _, s := range entities.Symptoms {
		if s == "cough" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestExtractEntities_OtherIntentsEmpty(t *testing.T) {
	engine := newTestEngine()

	for _, intent := range []Intent{IntentGreeting, IntentMedication, IntentHealthData, IntentEmergency, IntentUnknown} {
		entities := engine.ExtractEntities("I have a cough at 3pm with Dr. Smith", intent)
		assert.True(t, entities.IsEmpty(), "intent %s should extract nothing", intent)
	}
}
