package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// DefaultDueTolerance is the due-now window in minutes. It matches the
// reminder poller cadence so every dose slot evaluates due on at least one
// tick per day.
const DefaultDueTolerance = 1

// ScheduleService answers "what is due, and when is the next dose" from the
// medication store and a point in time. All methods are pure reads.
type ScheduleService struct {
	medsRepo repository.MedicationsRepositoryI
}

func NewScheduleService(medsRepo repository.MedicationsRepositoryI) *ScheduleService {
	if medsRepo == nil {
		log.Fatal("provided nil medsRepo for schedule service")
	}
	return &ScheduleService{medsRepo: medsRepo}
}

// DueToday returns active medications that still owe doses for now's calendar
// day. A medication drops out only once every slot for today is satisfied and
// reappears on every new day regardless of yesterday's completion.
func (ss *ScheduleService) DueToday(ctx context.Context, now time.Time) ([]*entity.Medication, error) {
	meds, err := ss.medsRepo.List(ctx)
	if err != nil {
		return nil, errors.New("medications repository error: " + err.Error())
	}
	today := dayOf(now)
	due := make([]*entity.Medication, 0, len(meds))
	for _, med := range meds {
		if !med.IsActive {
			continue
		}
		if med.CompleteFor(today) {
			continue
		}
		due = append(due, med)
	}
	return due, nil
}

// NextDose finds the soonest dose slot strictly after now among due
// medications. Ties on the same clock time resolve to the smallest medication
// ID so evaluation is deterministic.
func (ss *ScheduleService) NextDose(ctx context.Context, now time.Time) (*entity.UpcomingDose, bool, error) {
	due, err := ss.DueToday(ctx, now)
	if err != nil {
		return nil, false, err
	}
	nowMinutes := minutesOfDay(now)

	var best *entity.UpcomingDose
	for _, med := range due {
		for _, slot := range med.Times {
			slotMinutes, err := parseClockMinutes(slot)
			if err != nil {
				continue
			}
			if slotMinutes <= nowMinutes {
				continue
			}
			until := slotMinutes - nowMinutes
			if best == nil || until < best.MinutesUntil ||
				(until == best.MinutesUntil && med.ID.String() < best.Medication.ID.String()) {
				best = &entity.UpcomingDose{Medication: med, Time: slot, MinutesUntil: until}
			}
		}
	}
	if best == nil {
		return nil, false, nil
	}
	return best, true, nil
}

// NextTimeLabel is the display fallback for a single medication: its first
// slot after now, wrapping to the earliest slot when today is exhausted. It
// does not imply a next-day dose.
func NextTimeLabel(med *entity.Medication, now time.Time) string {
	if len(med.Times) == 0 {
		return ""
	}
	nowMinutes := minutesOfDay(now)
	for _, slot := range med.Times {
		slotMinutes, err := parseClockMinutes(slot)
		if err != nil {
			continue
		}
		if slotMinutes > nowMinutes {
			return slot
		}
	}
	return med.Times[0]
}

// UpcomingWithinWindow lists dose slots of active medications falling within
// the next windowMinutes, ordered soonest first.
func (ss *ScheduleService) UpcomingWithinWindow(ctx context.Context, now time.Time, windowMinutes int) ([]entity.UpcomingDose, error) {
	meds, err := ss.medsRepo.List(ctx)
	if err != nil {
		return nil, errors.New("medications repository error: " + err.Error())
	}
	nowMinutes := minutesOfDay(now)
	upcoming := make([]entity.UpcomingDose, 0)
	for _, med := range meds {
		if !med.IsActive {
			continue
		}
		for _, slot := range med.Times {
			slotMinutes, err := parseClockMinutes(slot)
			if err != nil {
				continue
			}
			until := slotMinutes - nowMinutes
			if until <= 0 || until > windowMinutes {
				continue
			}
			upcoming = append(upcoming, entity.UpcomingDose{Medication: med, Time: slot, MinutesUntil: until})
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].MinutesUntil != upcoming[j].MinutesUntil {
			return upcoming[i].MinutesUntil < upcoming[j].MinutesUntil
		}
		return upcoming[i].Medication.ID.String() < upcoming[j].Medication.ID.String()
	})
	return upcoming, nil
}

// IsDueNow reports whether the slot is inside the tolerance window around now.
// Tolerance <= 0 falls back to DefaultDueTolerance.
func IsDueNow(now time.Time, clockTime string, toleranceMinutes int) bool {
	if toleranceMinutes <= 0 {
		toleranceMinutes = DefaultDueTolerance
	}
	slotMinutes, err := parseClockMinutes(clockTime)
	if err != nil {
		return false
	}
	diff := slotMinutes - minutesOfDay(now)
	if diff < 0 {
		diff = -diff
	}
	return diff < toleranceMinutes
}
