package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listRepoMock serves a fixed medication list for the pure schedule reads.
type listRepoMock struct {
	meds []*entity.Medication
}

func (m *listRepoMock) Create(ctx context.Context, med *entity.Medication) error { return nil }

func (m *listRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	for _, med := range m.meds {
		if med.ID == id {
			return cloneMed(med), nil
		}
	}
	return nil, errorvalues.ErrMedicationNotFound
}

func (m *listRepoMock) List(ctx context.Context) ([]*entity.Medication, error) {
	out := make([]*entity.Medication, 0, len(m.meds))
	for _, med := range m.meds {
		out = append(out, cloneMed(med))
	}
	return out, nil
}

func (m *listRepoMock) Update(ctx context.Context, med *entity.Medication) error { return nil }
func (m *listRepoMock) Delete(ctx context.Context, id uuid.UUID) error           { return nil }

var errListRepo = errors.New("db error")

type failingListRepo struct{ listRepoMock }

func (failingListRepo) List(ctx context.Context) ([]*entity.Medication, error) {
	return nil, errListRepo
}

func medWithTimes(name string, times ...string) *entity.Medication {
	return &entity.Medication{
		ID:          uuid.New(),
		Name:        name,
		Dosage:      "10mg",
		Times:       times,
		IsActive:    true,
		TotalPerDay: len(times),
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.Local)
}

func TestDueToday(t *testing.T) {
	ctx := context.Background()
	now := at(10, 0)
	today := now.Format(entity.DateLayout)

	complete := medWithTimes("Complete", "08:00", "20:00")
	complete.LastTakenDate = today
	complete.TakenCount = 2

	partial := medWithTimes("Partial", "08:00", "20:00")
	partial.LastTakenDate = today
	partial.TakenCount = 1

	staleComplete := medWithTimes("StaleComplete", "08:00", "20:00")
	staleComplete.LastTakenDate = now.AddDate(0, 0, -1).Format(entity.DateLayout)
	staleComplete.TakenCount = 2

	inactive := medWithTimes("Inactive", "08:00")
	inactive.IsActive = false

	serv := service.NewScheduleService(&listRepoMock{meds: []*entity.Medication{complete, partial, staleComplete, inactive}})
	due, err := serv.DueToday(ctx, now)
	require.NoError(t, err)

	names := make([]string, 0, len(due))
	for _, med := range due {
		names = append(names, med.Name)
	}
	assert.ElementsMatch(t, []string{"Partial", "StaleComplete"}, names,
		"completed-today drops out, yesterday's completion reappears, inactive never shows")
}

func TestNextDose(t *testing.T) {
	ctx := context.Background()
	med := medWithTimes("ThriceDaily", "08:00", "14:00", "20:00")
	serv := service.NewScheduleService(&listRepoMock{meds: []*entity.Medication{med}})

	t.Run("mid-morning picks the afternoon slot", func(t *testing.T) {
		next, ok, err := serv.NextDose(ctx, at(10, 0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "14:00", next.Time)
		assert.Equal(t, 240, next.MinutesUntil)
		assert.Equal(t, med.Name, next.Medication.Name)
	})
	t.Run("after last slot there is no next dose", func(t *testing.T) {
		_, ok, err := serv.NextDose(ctx, at(21, 0))
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("slot at exactly now is not next", func(t *testing.T) {
		next, ok, err := serv.NextDose(ctx, at(14, 0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "20:00", next.Time)
	})
	t.Run("tie resolves to smallest medication id", func(t *testing.T) {
		a := medWithTimes("A", "14:00")
		b := medWithTimes("B", "14:00")
		serv := service.NewScheduleService(&listRepoMock{meds: []*entity.Medication{a, b}})
		next, ok, err := serv.NextDose(ctx, at(10, 0))
		require.NoError(t, err)
		require.True(t, ok)
		want := a
		if b.ID.String() < a.ID.String() {
			want = b
		}
		assert.Equal(t, want.ID, next.Medication.ID)
	})
	t.Run("repository failure surfaces", func(t *testing.T) {
		serv := service.NewScheduleService(&failingListRepo{})
		_, _, err := serv.NextDose(ctx, at(10, 0))
		assert.Error(t, err)
	})
}

func TestNextTimeLabel(t *testing.T) {
	med := medWithTimes("ThriceDaily", "08:00", "14:00", "20:00")
	assert.Equal(t, "14:00", service.NextTimeLabel(med, at(10, 0)))
	assert.Equal(t, "08:00", service.NextTimeLabel(med, at(21, 0)), "label wraps to the first slot")
}

func TestUpcomingWithinWindow(t *testing.T) {
	ctx := context.Background()
	morning := medWithTimes("Morning", "08:00")
	afternoon := medWithTimes("Afternoon", "13:30")
	evening := medWithTimes("Evening", "20:00")
	serv := service.NewScheduleService(&listRepoMock{meds: []*entity.Medication{evening, afternoon, morning}})

	upcoming, err := serv.UpcomingWithinWindow(ctx, at(10, 0), 240)
	require.NoError(t, err)
	require.Len(t, upcoming, 1, "08:00 already passed, 20:00 outside the window")
	assert.Equal(t, "Afternoon", upcoming[0].Medication.Name)
	assert.Equal(t, 210, upcoming[0].MinutesUntil)

	t.Run("ordered soonest first", func(t *testing.T) {
		upcoming, err := serv.UpcomingWithinWindow(ctx, at(12, 0), 600)
		require.NoError(t, err)
		require.Len(t, upcoming, 2)
		assert.Equal(t, "Afternoon", upcoming[0].Medication.Name)
		assert.Equal(t, "Evening", upcoming[1].Medication.Name)
	})
}

func TestIsDueNow(t *testing.T) {
	assert.True(t, service.IsDueNow(at(8, 0), "08:00", 1))
	assert.False(t, service.IsDueNow(at(8, 1), "08:00", 1))
	assert.True(t, service.IsDueNow(at(8, 4), "08:00", 5))
	assert.False(t, service.IsDueNow(at(8, 0), "garbage", 1))
}

func TestScheduleEvaluationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	med := medWithTimes("ThriceDaily", "08:00", "14:00", "20:00")
	serv := service.NewScheduleService(&listRepoMock{meds: []*entity.Medication{med}})
	now := at(10, 0)

	dueA, err := serv.DueToday(ctx, now)
	require.NoError(t, err)
	dueB, err := serv.DueToday(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, dueA, dueB)

	nextA, okA, err := serv.NextDose(ctx, now)
	require.NoError(t, err)
	nextB, okB, err := serv.NextDose(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, okA, okB)
	assert.Equal(t, nextA, nextB)
}
