package repository

import (
	"context"
	"log"
	"log/slog"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ReminderMarksRepository deduplicates reminder delivery. It keeps one entry
// per (medication, time) pair holding the date the reminder last fired, so the
// structure stays bounded by the number of configured dose slots instead of
// growing with every day.
type ReminderMarksRepository struct {
	mu    sync.RWMutex
	store KVStore
	marks map[string]string
}

func NewReminderMarksRepo(store KVStore) *ReminderMarksRepository {
	if store == nil {
		log.Fatal("provided nil store for reminderMarksRepo")
	}
	repo := &ReminderMarksRepository{store: store, marks: make(map[string]string)}
	raw, ok, err := store.Get(KeyReminderMarks)
	if err != nil {
		slog.Warn("loading reminder marks failed, starting empty", "error", err.Error())
		return repo
	}
	if !ok {
		return repo
	}
	if err := sonic.Unmarshal(raw, &repo.marks); err != nil {
		slog.Warn("stored reminder marks are malformed, starting empty", "error", err.Error())
		repo.marks = make(map[string]string)
	}
	return repo
}

func markKey(medicationID uuid.UUID, clockTime string) string {
	return medicationID.String() + "|" + clockTime
}

func (rr *ReminderMarksRepository) LastFired(ctx context.Context, medicationID uuid.UUID, clockTime string) (string, error) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.marks[markKey(medicationID, clockTime)], nil
}

func (rr *ReminderMarksRepository) MarkFired(ctx context.Context, medicationID uuid.UUID, clockTime, date string) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.marks[markKey(medicationID, clockTime)] = date
	persist(rr.store, KeyReminderMarks, rr.marks)
	return nil
}
