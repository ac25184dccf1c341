package repository

import (
	"context"
	"log"
	"log/slog"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// MedicationsRepository keeps the medication collection in memory and mirrors
// every mutation into the KV store. A failed save is logged only: the in-memory
// state stays authoritative for the rest of the session.
type MedicationsRepository struct {
	mu    sync.RWMutex
	store KVStore
	items []*entity.Medication
}

func NewMedicationsRepo(store KVStore) *MedicationsRepository {
	if store == nil {
		log.Fatal("provided nil store for medicationsRepo")
	}
	repo := &MedicationsRepository{store: store}
	repo.items = loadCollection[*entity.Medication](store, KeyMedications)
	return repo
}

// loadCollection reads one JSON array document, treating a missing key or
// corrupt payload as an empty collection rather than failing startup.
func loadCollection[T any](store KVStore, key string) []T {
	raw, ok, err := store.Get(key)
	if err != nil {
		slog.Warn("loading collection from storage failed, starting empty", "key", key, "error", err.Error())
		return nil
	}
	if !ok {
		return nil
	}
	var items []T
	if err := sonic.Unmarshal(raw, &items); err != nil {
		slog.Warn("stored collection is malformed, starting empty", "key", key, "error", err.Error())
		return nil
	}
	return items
}

// persist marshals the collection and saves it fire-and-forget.
func persist(store KVStore, key string, items any) {
	raw, err := sonic.Marshal(items)
	if err != nil {
		slog.Error("marshalling collection for storage failed", "key", key, "error", err.Error())
		return
	}
	if err := store.Set(key, raw); err != nil {
		slog.Error("saving collection to storage failed, in-memory state retained", "key", key, "error", err.Error())
	}
}

func cloneMedication(m *entity.Medication) *entity.Medication {
	cp := *m
	cp.Times = append([]string(nil), m.Times...)
	return &cp
}

func (mr *MedicationsRepository) Create(ctx context.Context, med *entity.Medication) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.items = append(mr.items, cloneMedication(med))
	persist(mr.store, KeyMedications, mr.items)
	return nil
}

func (mr *MedicationsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	for _, m := range mr.items {
		if m.ID == id {
			return cloneMedication(m), nil
		}
	}
	return nil, errorvalues.ErrMedicationNotFound
}

func (mr *MedicationsRepository) List(ctx context.Context) ([]*entity.Medication, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make([]*entity.Medication, 0, len(mr.items))
	for _, m := range mr.items {
		out = append(out, cloneMedication(m))
	}
	return out, nil
}

func (mr *MedicationsRepository) Update(ctx context.Context, med *entity.Medication) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for i, m := range mr.items {
		if m.ID == med.ID {
			mr.items[i] = cloneMedication(med)
			persist(mr.store, KeyMedications, mr.items)
			return nil
		}
	}
	return errorvalues.ErrMedicationNotFound
}

func (mr *MedicationsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for i, m := range mr.items {
		if m.ID == id {
			mr.items = append(mr.items[:i], mr.items[i+1:]...)
			persist(mr.store, KeyMedications, mr.items)
			return nil
		}
	}
	return errorvalues.ErrMedicationNotFound
}
