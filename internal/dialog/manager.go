package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carewell-ai/care-assistant/internal/knowledge"
	"github.com/carewell-ai/care-assistant/internal/nlp"
	"github.com/carewell-ai/care-assistant/internal/observability/metrics"
	"github.com/carewell-ai/care-assistant/internal/users"
	"github.com/carewell-ai/care-assistant/pkg/logging"
)

// Fixed responses. The templated variants live next to their handlers.
const (
	respWelcome      = "Welcome to Healthcare Assistant! I'd like to get to know you. What's your name?"
	respEmergency    = "⚠️ This sounds like a medical emergency. Please call emergency services (911) immediately or go to the nearest emergency room. ⚠️"
	respAskDayTime   = "I'd be happy to help you schedule an appointment. What day and time works best for you?"
	respOfferMeds    = "I can help you manage your medications. Would you like to add a new medication or set up reminders?"
	respAskSymptoms  = "I'm sorry to hear you're not feeling well. Can you tell me more about your symptoms?"
	respHealthData   = "I can help you track your health data. What type of data would you like to record or view (blood pressure, weight, glucose levels, etc.)?"
	respAskDOB       = "Thank you! For your health records, I need your date of birth (MM/DD/YYYY):"
	respAccountReady = "Thank you! Your healthcare account has been created. How can I help you today?"
	respFallback     = "I'm here to help with your healthcare needs. You can ask me about appointments, medications, symptoms, or health tracking."
)

// minConditionOverlap is the number of mentioned symptoms a condition must
// share before a self-care suggestion is offered.
const minConditionOverlap = 2

// turn carries one message's worth of state through the handler table.
type turn struct {
	session  *Session
	user     *users.User
	message  string
	entities nlp.Entities
}

// intentHandler pairs an intent with its handler. The table is ordered:
// dispatch walks it top to bottom and the first matching entry wins, so
// priority is data, not code order.
type intentHandler struct {
	intent nlp.Intent
	handle func(ctx context.Context, t *turn) (string, error)
}

// Manager routes messages through intent dispatch and the onboarding state
// machine. It owns the per-user session store.
type Manager struct {
	users    users.Repository
	engine   *nlp.Engine
	kb       *knowledge.Store
	sessions *sessionStore
	handlers []intentHandler
	logger   *logging.Logger
	metrics  *metrics.DialogMetrics
}

// NewManager wires a dialog manager. The store and engine are passed in
// explicitly; there are no package-level singletons.
func NewManager(repo users.Repository, engine *nlp.Engine, kb *knowledge.Store, logger *logging.Logger, m *metrics.DialogMetrics) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	mgr := &Manager{
		users:    repo,
		engine:   engine,
		kb:       kb,
		sessions: newSessionStore(),
		logger:   logger,
		metrics:  m,
	}
	mgr.handlers = []intentHandler{
		{nlp.IntentGreeting, mgr.handleGreeting},
		{nlp.IntentEmergency, mgr.handleEmergency},
		{nlp.IntentAppointment, mgr.handleAppointment},
		{nlp.IntentMedication, mgr.handleMedication},
		{nlp.IntentSymptom, mgr.handleSymptom},
		{nlp.IntentHealthData, mgr.handleHealthData},
	}
	return mgr
}

// SessionState reports the conversation state for a user id, if a session
// exists.
func (m *Manager) SessionState(userID string) (State, bool) {
	session, ok := m.sessions.get(userID)
	if !ok {
		return "", false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.State, true
}

// ProcessMessage runs one dialog turn for the user and returns the response
// text. The session for userID is created on first call and mutated in place.
func (m *Manager) ProcessMessage(ctx context.Context, userID, message string) (string, error) {
	start := time.Now()

	session := m.sessions.getOrCreate(userID)
	session.mu.Lock()
	defer session.mu.Unlock()

	user, err := m.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			return "", fmt.Errorf("dialog: load user: %w", err)
		}
		user = nil
	}

	intent, score := m.engine.DetectIntent(message)
	entities := m.engine.ExtractEntities(message, intent)

	session.LastIntent = intent
	session.Context.merge(entities)

	m.logger.Debug("dialog turn",
		"user_id", userID,
		"intent", string(intent),
		"score", score,
		"state", string(session.State),
	)

	t := &turn{session: session, user: user, message: message, entities: entities}

	response, err := m.dispatch(ctx, intent, t)
	if err != nil {
		return "", err
	}

	m.metrics.ObserveTurn(string(intent), time.Since(start).Seconds())
	return response, nil
}

// dispatch walks the ordered handler table, then the onboarding state
// machine, then falls back to the generic help response.
func (m *Manager) dispatch(ctx context.Context, intent nlp.Intent, t *turn) (string, error) {
	for _, h := range m.handlers {
		if h.intent == intent {
			return h.handle(ctx, t)
		}
	}

	if response, handled, err := m.advanceOnboarding(ctx, intent, t); err != nil {
		return "", err
	} else if handled {
		return response, nil
	}

	return respFallback, nil
}

func (m *Manager) handleGreeting(_ context.Context, t *turn) (string, error) {
	if t.user != nil {
		return fmt.Sprintf("Hello %s! How can I help you with your healthcare needs today?", t.user.Name), nil
	}
	t.session.State = StateOnboardingName
	return respWelcome, nil
}

func (m *Manager) handleEmergency(_ context.Context, _ *turn) (string, error) {
	m.metrics.ObserveEmergency()
	return respEmergency, nil
}

func (m *Manager) handleAppointment(_ context.Context, t *turn) (string, error) {
	if t.entities.Date != "" && t.entities.Time != "" {
		return fmt.Sprintf("I've noted your request for an appointment on %s at %s. Would you like me to schedule this for you?",
			t.entities.Date, t.entities.Time), nil
	}
	return respAskDayTime, nil
}

func (m *Manager) handleMedication(_ context.Context, t *turn) (string, error) {
	if t.user != nil && len(t.user.Medications) > 0 {
		names := make([]string, 0, len(t.user.Medications))
		for _, med := range t.user.Medications {
			names = append(names, med.Name)
		}
		return fmt.Sprintf("I see you're currently taking: %s. Would you like information about these medications or help setting up reminders?",
			strings.Join(names, ", ")), nil
	}
	return respOfferMeds, nil
}

func (m *Manager) handleSymptom(_ context.Context, t *turn) (string, error) {
	if len(t.entities.Symptoms) == 0 {
		return respAskSymptoms, nil
	}

	mentioned := strings.Join(t.entities.Symptoms, ", ")
	for _, condition := range m.kb.Conditions() {
		if overlap(t.entities.Symptoms, condition.Symptoms) >= minConditionOverlap {
			return fmt.Sprintf("Based on your symptoms (%s), you may have a %s. %s\n\nWould you like to schedule an appointment with a doctor?",
				mentioned, condition.Name, condition.SelfCare), nil
		}
	}
	return fmt.Sprintf("I notice you mentioned these symptoms: %s. These symptoms could be related to several conditions. Would you like to schedule an appointment to discuss these with a healthcare provider?",
		mentioned), nil
}

func (m *Manager) handleHealthData(_ context.Context, _ *turn) (string, error) {
	return respHealthData, nil
}

// advanceOnboarding moves a mid-onboarding session one step forward. It only
// runs for messages no intent handler claimed. Completing the final step
// persists a new User built from the collected context.
//
// The created record is stored under a freshly generated id rather than the
// caller's session key, matching the long-standing behavior of this flow.
func (m *Manager) advanceOnboarding(ctx context.Context, intent nlp.Intent, t *turn) (string, bool, error) {
	session := t.session

	switch {
	case session.State == StateOnboardingName && intent != nlp.IntentGreeting:
		session.Context.Name = t.message
		session.State = StateOnboardingEmail
		return fmt.Sprintf("Nice to meet you, %s! What's your email address so I can create an account for you?", t.message), true, nil

	case session.State == StateOnboardingEmail:
		session.Context.Email = t.message
		session.State = StateOnboardingDOB
		return respAskDOB, true, nil

	case session.State == StateOnboardingDOB:
		session.Context.DOB = t.message
		session.State = StateNormal

		user := &users.User{
			ID:        uuid.NewString(),
			Name:      session.Context.Name,
			Email:     session.Context.Email,
			DOB:       session.Context.DOB,
			CreatedAt: time.Now().UTC(),
		}
		if err := m.users.Create(ctx, user); err != nil {
			return "", false, fmt.Errorf("dialog: create user: %w", err)
		}

		m.metrics.ObserveOnboardingCompleted()
		m.logger.Info("onboarding completed", "user_id", user.ID, "name", user.Name)
		return respAccountReady, true, nil
	}

	return "", false, nil
}

// overlap counts distinct mentioned symptoms that appear in the condition's
// symptom list.
func overlap(mentioned, conditionSymptoms []string) int {
	seen := make(map[string]bool, len(mentioned))
	for _, s := range mentioned {
		seen[s] = true
	}
	count := 0
	for _, s := range conditionSymptoms {
		if seen[s] {
			count++
		}
	}
	return count
}
