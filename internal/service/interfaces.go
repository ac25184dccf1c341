package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

type CreateMedicationRequest struct {
	Name      string   `validate:"required,max=200"`
	Dosage    string   `validate:"required,max=200"`
	Frequency string   `validate:"max=200"`
	Notes     string   `validate:"max=2000"`
	Times     []string `validate:"required,min=1,dive,clocktime"`
	StartDate string   `validate:"omitempty,dateonly"`
	EndDate   string   `validate:"omitempty,dateonly"`
	Color     string   `validate:"max=30"`
	Icon      string   `validate:"max=50"`
}

type UpdateMedicationRequest struct {
	ID        uuid.UUID `validate:"required"`
	Name      string    `validate:"required,max=200"`
	Dosage    string    `validate:"required,max=200"`
	Frequency string    `validate:"max=200"`
	Notes     string    `validate:"max=2000"`
	Times     []string  `validate:"required,min=1,dive,clocktime"`
	StartDate string    `validate:"omitempty,dateonly"`
	EndDate   string    `validate:"omitempty,dateonly"`
	Color     string    `validate:"max=30"`
	Icon      string    `validate:"max=50"`
	IsActive  bool
}

type FamilyMemberRequest struct {
	Name          string `validate:"required,max=200"`
	Relationship  string `validate:"required,max=100"`
	Phone         string `validate:"max=30"`
	Email         string `validate:"omitempty,email"`
	Notifications bool
}

type MedicationsServiceI interface {
	// Validates input and appends a new medication with TotalPerDay derived from its times
	Create(ctx context.Context, req *CreateMedicationRequest) (*entity.Medication, error)
	// Rewrites display fields and times; daily progress fields are preserved. Missing id is a no-op
	Update(ctx context.Context, req *UpdateMedicationRequest) error
	// Removes a medication; its dose history survives. Missing id is a no-op
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Medication, error)
	List(ctx context.Context) ([]*entity.Medication, error)
	// Records one taken dose at the given clock time, rolling the daily counter
	// over on a new calendar day and appending to the ledger
	MarkTaken(ctx context.Context, id uuid.UUID, clockTime string, now time.Time) error
	// Summarises today's schedule completion across all medications
	DailyProgress(ctx context.Context, now time.Time) (*entity.DailyProgress, error)
}

type ScheduleServiceI interface {
	// Medications still owing doses for now's calendar day
	DueToday(ctx context.Context, now time.Time) ([]*entity.Medication, error)
	// The soonest strictly-future dose slot among due medications, ok=false when
	// today's remaining slots are exhausted
	NextDose(ctx context.Context, now time.Time) (*entity.UpcomingDose, bool, error)
	// Dose slots falling within the next windowMinutes, soonest first
	UpcomingWithinWindow(ctx context.Context, now time.Time, windowMinutes int) ([]entity.UpcomingDose, error)
}

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

type AdherenceServiceI interface {
	// Compliance, taken/missed counts and longest streak over [from, to]
	Stats(ctx context.Context, from, to string) (*entity.AdherenceReport, error)
	// Stats over a trailing preset period ending today
	StatsForPeriod(ctx context.Context, now time.Time, period Period) (*entity.AdherenceReport, error)
	// Dose events in [from, to], newest first
	History(ctx context.Context, from, to string) ([]entity.DoseEvent, error)
	// All events ever recorded for one medication, newest first
	MedicationHistory(ctx context.Context, medicationID uuid.UUID) ([]entity.DoseEvent, error)
	// CSV report for [from, to]: one row per event, a placeholder row for
	// event-free days, and a trailing summary block
	ExportCSV(ctx context.Context, from, to string) ([]byte, error)
}

// PresenceStrategy decides whether a member's online flag flips on one
// simulation tick. Injectable so tests can replace the random default.
type PresenceStrategy interface {
	Next(isOnline bool) (newState bool, changed bool)
}

type FamilyServiceI interface {
	Add(ctx context.Context, req *FamilyMemberRequest) (*entity.FamilyMember, error)
	// Missing id is a no-op
	Update(ctx context.Context, id uuid.UUID, req *FamilyMemberRequest) error
	// Missing id is a no-op
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entity.FamilyMember, error)
	// Applies the presence strategy to every member, stamping LastSeen on change
	SimulatePresence(ctx context.Context, now time.Time) error
}
