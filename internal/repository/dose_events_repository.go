package repository

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// DoseEventsRepository is the append-only dose ledger. Events reference
// medications weakly, so deleting a medication leaves its history intact.
type DoseEventsRepository struct {
	mu    sync.RWMutex
	store KVStore
	items []entity.DoseEvent
}

func NewDoseEventsRepo(store KVStore) *DoseEventsRepository {
	if store == nil {
		log.Fatal("provided nil store for doseEventsRepo")
	}
	repo := &DoseEventsRepository{store: store}
	repo.items = loadCollection[entity.DoseEvent](store, KeyHistory)
	return repo
}

func (er *DoseEventsRepository) Append(ctx context.Context, event *entity.DoseEvent) error {
	er.mu.Lock()
	defer er.mu.Unlock()
	er.items = append(er.items, *event)
	persist(er.store, KeyHistory, er.items)
	return nil
}

func (er *DoseEventsRepository) GetByDateRange(ctx context.Context, from, to string) ([]entity.DoseEvent, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()
	// DateLayout strings order lexicographically, so plain comparison works.
	out := make([]entity.DoseEvent, 0)
	for _, ev := range er.items {
		if ev.Date >= from && ev.Date <= to {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (er *DoseEventsRepository) GetByMedicationID(ctx context.Context, medicationID uuid.UUID) ([]entity.DoseEvent, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()
	out := make([]entity.DoseEvent, 0)
	for _, ev := range er.items {
		if ev.MedicationID == medicationID {
			out = append(out, ev)
		}
	}
	return out, nil
}
