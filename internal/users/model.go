package users

import "time"

// User is a patient record created during onboarding.
type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	DOB          string            `json:"dob"`
	HealthData   map[string]string `json:"health_data,omitempty"`
	Appointments []Appointment     `json:"appointments,omitempty"`
	Medications  []Medication      `json:"medications,omitempty"`
	ChatHistory  []ChatMessage     `json:"chat_history,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Appointment is a scheduled (or otherwise-statused) doctor visit.
type Appointment struct {
	ID       string    `json:"id"`
	Doctor   string    `json:"doctor"`
	DateTime time.Time `json:"date_time"`
	Reason   string    `json:"reason"`
	Status   string    `json:"status"`
}

// Medication is a tracked prescription.
type Medication struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// ChatMessage is one turn of a user's chat history, append-only and ordered
// by creation time.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	// SenderUser marks a message written by the patient.
	SenderUser = "user"
	// SenderBot marks a message written by the assistant.
	SenderBot = "bot"

	// AppointmentStatusScheduled is the initial appointment status.
	AppointmentStatusScheduled = "scheduled"
)
