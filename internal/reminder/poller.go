package reminder

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/clock"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// Notifier is the delivery boundary. Actual OS or browser notification
// plumbing lives behind it.
type Notifier interface {
	Notify(medication *entity.Medication, clockTime string)
}

// SlogNotifier logs fired reminders. It is the default delivery channel when
// no platform integration is wired in.
type SlogNotifier struct{}

func (SlogNotifier) Notify(medication *entity.Medication, clockTime string) {
	slog.Info("medication reminder",
		"medication", medication.Name,
		"dosage", medication.Dosage,
		"time", clockTime,
	)
}

// Poller re-evaluates due slots on a fixed cadence and fires each (medication,
// time) reminder at most once per calendar day, deduplicated through the
// persisted marks repository.
type Poller struct {
	schedule  service.ScheduleServiceI
	marks     repository.ReminderMarksRepositoryI
	notifier  Notifier
	clk       clock.Clock
	interval  time.Duration
	tolerance int
}

func NewPoller(schedule service.ScheduleServiceI, marks repository.ReminderMarksRepositoryI, notifier Notifier, clk clock.Clock) *Poller {
	if schedule == nil || marks == nil {
		log.Fatal("on reminder poller provided nil dependencies")
	}
	if notifier == nil {
		notifier = SlogNotifier{}
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Poller{
		schedule:  schedule,
		marks:     marks,
		notifier:  notifier,
		clk:       clk,
		interval:  time.Minute,
		tolerance: service.DefaultDueTolerance,
	}
}

// Tick evaluates one polling pass at the given instant.
func (p *Poller) Tick(ctx context.Context, now time.Time) error {
	due, err := p.schedule.DueToday(ctx, now)
	if err != nil {
		return err
	}
	today := now.Format(entity.DateLayout)
	for _, med := range due {
		for _, slot := range med.Times {
			if !service.IsDueNow(now, slot, p.tolerance) {
				continue
			}
			lastFired, err := p.marks.LastFired(ctx, med.ID, slot)
			if err != nil {
				return err
			}
			if lastFired == today {
				continue
			}
			p.notifier.Notify(med, slot)
			if err := p.marks.MarkFired(ctx, med.ID, slot, today); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run loops Tick on the poller interval until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Tick(ctx, p.clk.Now()); err != nil {
				slog.Error("reminder tick failed", "error", err.Error())
			}
		}
	}
}
