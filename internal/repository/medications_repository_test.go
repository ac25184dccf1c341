package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation, to exercise the log-only persistence path.
type brokenStore struct{}

func (brokenStore) Get(key string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (brokenStore) Set(key string, value []byte) error   { return errors.New("disk gone") }
func (brokenStore) Close() error                         { return nil }

func sampleMedication(name string) *entity.Medication {
	return &entity.Medication{
		ID:          uuid.New(),
		Name:        name,
		Dosage:      "500mg",
		Frequency:   "Twice daily",
		Times:       []string{"08:00", "20:00"},
		Color:       "#4A90D9",
		Icon:        "pills",
		IsActive:    true,
		TotalPerDay: 2,
	}
}

func TestMedicationsRepo(t *testing.T) {
	ctx := context.Background()
	t.Run("create and read back", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(repository.NewMemoryStore())
		med := sampleMedication("Aspirin")
		require.NoError(t, repo.Create(ctx, med))

		got, err := repo.GetByID(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, med, got)
	})
	t.Run("returned values are clones", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(repository.NewMemoryStore())
		med := sampleMedication("Aspirin")
		require.NoError(t, repo.Create(ctx, med))

		got, err := repo.GetByID(ctx, med.ID)
		require.NoError(t, err)
		got.Times[0] = "00:00"
		got.Name = "tampered"

		again, err := repo.GetByID(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, "Aspirin", again.Name)
		assert.Equal(t, "08:00", again.Times[0])
	})
	t.Run("unknown id", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(repository.NewMemoryStore())
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrMedicationNotFound)
	})
	t.Run("update replaces and delete removes", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(repository.NewMemoryStore())
		med := sampleMedication("Aspirin")
		require.NoError(t, repo.Create(ctx, med))

		med.Dosage = "100mg"
		require.NoError(t, repo.Update(ctx, med))
		got, err := repo.GetByID(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, "100mg", got.Dosage)

		require.NoError(t, repo.Delete(ctx, med.ID))
		_, err = repo.GetByID(ctx, med.ID)
		assert.ErrorIs(t, err, errorvalues.ErrMedicationNotFound)
	})
	t.Run("list preserves insertion order", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(repository.NewMemoryStore())
		first := sampleMedication("Aspirin")
		second := sampleMedication("Vitamin D")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Aspirin", list[0].Name)
		assert.Equal(t, "Vitamin D", list[1].Name)
	})
	t.Run("survives reload from the same store", func(t *testing.T) {
		store := repository.NewMemoryStore()
		repo := repository.NewMedicationsRepo(store)
		med := sampleMedication("Aspirin")
		require.NoError(t, repo.Create(ctx, med))

		reloaded := repository.NewMedicationsRepo(store)
		got, err := reloaded.GetByID(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, med.Name, got.Name)
		assert.Equal(t, med.Times, got.Times)
	})
	t.Run("malformed stored payload starts empty", func(t *testing.T) {
		store := repository.NewMemoryStore()
		require.NoError(t, store.Set(repository.KeyMedications, []byte("{not json")))

		repo := repository.NewMedicationsRepo(store)
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
	t.Run("failing store keeps in-memory state", func(t *testing.T) {
		repo := repository.NewMedicationsRepo(brokenStore{})
		med := sampleMedication("Aspirin")
		require.NoError(t, repo.Create(ctx, med))

		got, err := repo.GetByID(ctx, med.ID)
		require.NoError(t, err)
		assert.Equal(t, "Aspirin", got.Name)
	})
}
