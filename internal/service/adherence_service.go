package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// AdherenceService computes compliance metrics from the dose ledger. Adherence
// is measured against days that have at least one logged event: slots that
// passed without any record leave no trace in the ledger and therefore do not
// count as missed.
type AdherenceService struct {
	eventsRepo repository.DoseEventsRepositoryI
}

func NewAdherenceService(eventsRepo repository.DoseEventsRepositoryI) *AdherenceService {
	if eventsRepo == nil {
		log.Fatal("provided nil eventsRepo for adherence service")
	}
	return &AdherenceService{eventsRepo: eventsRepo}
}

type dayTally struct {
	total int
	taken int
}

func (as *AdherenceService) tallyByDay(ctx context.Context, from, to string) (map[string]dayTally, error) {
	events, err := as.eventsRepo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, errors.New("dose events repository error: " + err.Error())
	}
	days := make(map[string]dayTally)
	for _, ev := range events {
		tally := days[ev.Date]
		tally.total++
		if ev.Status == entity.DoseTaken {
			tally.taken++
		}
		days[ev.Date] = tally
	}
	return days, nil
}

// Stats accumulates totals over the inclusive [from, to] range. The streak
// counts consecutive fully-compliant days among days that have events; a day
// without events neither extends nor breaks it.
func (as *AdherenceService) Stats(ctx context.Context, from, to string) (*entity.AdherenceReport, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	days, err := as.tallyByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &entity.AdherenceReport{}
	currentStreak := 0
	for d := fromDate; !d.After(toDate); d = d.AddDate(0, 0, 1) {
		tally, ok := days[dayOf(d)]
		if !ok || tally.total == 0 {
			continue
		}
		report.Total += tally.total
		report.Taken += tally.taken
		report.Missed += tally.total - tally.taken
		if tally.taken == tally.total {
			currentStreak++
			if currentStreak > report.Streak {
				report.Streak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	if report.Total > 0 {
		report.CompliancePercent = int(math.Round(float64(report.Taken) / float64(report.Total) * 100))
	}
	return report, nil
}

func periodStart(now time.Time, period Period) time.Time {
	switch period {
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

func (as *AdherenceService) StatsForPeriod(ctx context.Context, now time.Time, period Period) (*entity.AdherenceReport, error) {
	return as.Stats(ctx, dayOf(periodStart(now, period)), dayOf(now))
}

func sortEventsNewestFirst(events []entity.DoseEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date > events[j].Date
		}
		return events[i].Time > events[j].Time
	})
}

func (as *AdherenceService) History(ctx context.Context, from, to string) ([]entity.DoseEvent, error) {
	if _, err := parseDate(from); err != nil {
		return nil, err
	}
	if _, err := parseDate(to); err != nil {
		return nil, err
	}
	events, err := as.eventsRepo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, errors.New("dose events repository error: " + err.Error())
	}
	sortEventsNewestFirst(events)
	return events, nil
}

func (as *AdherenceService) MedicationHistory(ctx context.Context, medicationID uuid.UUID) ([]entity.DoseEvent, error) {
	events, err := as.eventsRepo.GetByMedicationID(ctx, medicationID)
	if err != nil {
		return nil, errors.New("dose events repository error: " + err.Error())
	}
	sortEventsNewestFirst(events)
	return events, nil
}

// ExportCSV renders the ledger for [from, to]: header, one row per event in
// chronological order, exactly one placeholder row for every day without
// events, and a trailing summary block.
func (as *AdherenceService) ExportCSV(ctx context.Context, from, to string) ([]byte, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	events, err := as.eventsRepo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, errors.New("dose events repository error: " + err.Error())
	}
	byDay := make(map[string][]entity.DoseEvent)
	for _, ev := range events {
		byDay[ev.Date] = append(byDay[ev.Date], ev)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Date", "Medication", "Time", "Status"})
	for d := fromDate; !d.After(toDate); d = d.AddDate(0, 0, 1) {
		date := dayOf(d)
		dayEvents, ok := byDay[date]
		if !ok {
			w.Write([]string{date, "", "", ""})
			continue
		}
		sort.Slice(dayEvents, func(i, j int) bool { return dayEvents[i].Time < dayEvents[j].Time })
		for _, ev := range dayEvents {
			w.Write([]string{ev.Date, ev.MedicationName, ev.Time, string(ev.Status)})
		}
	}

	report, err := as.Stats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	w.Write([]string{})
	w.Write([]string{"Compliance", strconv.Itoa(report.CompliancePercent) + "%"})
	w.Write([]string{"Taken", strconv.Itoa(report.Taken)})
	w.Write([]string{"Missed", strconv.Itoa(report.Missed)})
	w.Write([]string{"Max streak", strconv.Itoa(report.Streak)})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.New("writing csv error: " + err.Error())
	}
	return buf.Bytes(), nil
}
