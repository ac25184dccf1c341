package entity

import (
	"time"

	"github.com/google/uuid"
)

// Layouts for the calendar-date and clock-time strings stored on entities.
// A dose slot never crosses midnight, so a date plus an HH:MM time always
// identifies a single local instant.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type DoseStatus string

const (
	DoseTaken  DoseStatus = "taken"
	DoseMissed DoseStatus = "missed"
)

type Medication struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	Notes     string    `json:"notes,omitempty"`
	// Times holds the daily dose slots as unique HH:MM strings in ascending order.
	Times     []string `json:"times"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Color     string   `json:"color"`
	Icon      string   `json:"icon"`
	IsActive  bool     `json:"is_active"`
	// LastTakenDate is the calendar date of the most recent taken dose in
	// DateLayout format, empty if never taken. TakenCount counts doses taken
	// on that date only; when LastTakenDate is not today the count is stale
	// and reads as zero until the next mark-taken resets it.
	LastTakenDate string    `json:"last_taken_date,omitempty"`
	TakenCount    int       `json:"taken_count"`
	TotalPerDay   int       `json:"total_per_day"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TakenOn reports how many doses were taken on the given date, treating a
// stale count from an earlier date as zero.
func (m *Medication) TakenOn(date string) int {
	if m.LastTakenDate != date {
		return 0
	}
	return m.TakenCount
}

// CompleteFor reports whether every dose slot for the given date is satisfied.
func (m *Medication) CompleteFor(date string) bool {
	return m.LastTakenDate == date && m.TakenCount >= m.TotalPerDay
}

// DoseEvent is an append-only history record. MedicationID is a weak reference:
// the event survives deletion of the medication, which is why the name is
// captured as a snapshot at event time.
type DoseEvent struct {
	ID             uuid.UUID  `json:"id"`
	MedicationID   uuid.UUID  `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Status         DoseStatus `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
}

type FamilyMember struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Relationship  string    `json:"relationship"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	IsOnline      bool      `json:"is_online"`
	LastSeen      time.Time `json:"last_seen"`
	Notifications bool      `json:"notifications"`
}

type AdherenceReport struct {
	CompliancePercent int `json:"compliance_percent"`
	Taken             int `json:"taken"`
	Missed            int `json:"missed"`
	Streak            int `json:"streak"`
	Total             int `json:"total"`
}

// UpcomingDose is one dose slot of an active medication inside a reminder window.
type UpcomingDose struct {
	Medication   *Medication `json:"medication"`
	Time         string      `json:"time"`
	MinutesUntil int         `json:"minutes_until"`
}

// DailyProgress summarises today's schedule across all medications.
type DailyProgress struct {
	TotalMedications  int `json:"total_medications"`
	ActiveMedications int `json:"active_medications"`
	TakenToday        int `json:"taken_today"`
	TotalToday        int `json:"total_today"`
	CompletionPercent int `json:"completion_percent"`
}
