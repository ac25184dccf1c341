package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// Storage keys of the local key-value persistence contract. Every collection
// is one JSON document under its key.
const (
	KeyMedications   = "medications"
	KeyFamilyMembers = "familyMembers"
	KeyHistory       = "medicationHistory"
	KeyReminderMarks = "reminderMarks"
)

// KVStore is the local persistence boundary. Values are JSON documents.
type KVStore interface {
	// Get returns the stored value for key; ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value under key, overwriting any previous value.
	Set(key string, value []byte) error
	// Close releases the underlying storage.
	Close() error
}

type MedicationsRepositoryI interface {
	// Appends a new medication to the store
	Create(ctx context.Context, med *entity.Medication) error
	// Searches medication with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error)
	// Lists all medications in creation order
	List(ctx context.Context) ([]*entity.Medication, error)
	// Replaces the stored medication with the same ID
	Update(ctx context.Context, med *entity.Medication) error
	// Removes medication with id; its dose history is kept
	Delete(ctx context.Context, id uuid.UUID) error
}

type DoseEventsRepositoryI interface {
	// Appends one event to the ledger; events are never mutated or deleted
	Append(ctx context.Context, event *entity.DoseEvent) error
	// Provides events whose date lies in the inclusive [from, to] range
	GetByDateRange(ctx context.Context, from, to string) ([]entity.DoseEvent, error)
	// Provides all events recorded for one medication
	GetByMedicationID(ctx context.Context, medicationID uuid.UUID) ([]entity.DoseEvent, error)
}

type FamilyRepositoryI interface {
	// Appends a new family member
	Create(ctx context.Context, member *entity.FamilyMember) error
	// Searches member with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FamilyMember, error)
	// Lists all members in creation order
	List(ctx context.Context) ([]*entity.FamilyMember, error)
	// Replaces the stored member with the same ID
	Update(ctx context.Context, member *entity.FamilyMember) error
	// Removes member with id
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReminderMarksRepositoryI interface {
	// Returns the date a reminder for (medication, time) last fired, empty if never
	LastFired(ctx context.Context, medicationID uuid.UUID, clockTime string) (string, error)
	// Records that the reminder for (medication, time) fired on date
	MarkFired(ctx context.Context, medicationID uuid.UUID, clockTime, date string) error
}
