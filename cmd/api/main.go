package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nazipyamilov-hub/MedTracker/internal/api"
	"github.com/nazipyamilov-hub/MedTracker/internal/reminder"
	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/cleanup"
	"github.com/nazipyamilov-hub/MedTracker/pkg/clock"
	"github.com/nazipyamilov-hub/MedTracker/pkg/config"
)

const presenceInterval = 10 * time.Second

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	store := repository.NewBadgerStore(cfg.GetStringOr("DATA_DIR", "./data"))

	medsRepo := repository.NewMedicationsRepo(store)
	eventsRepo := repository.NewDoseEventsRepo(store)
	familyRepo := repository.NewFamilyRepo(store)
	marksRepo := repository.NewReminderMarksRepo(store)

	clk := clock.System()
	medicationsService := service.NewMedicationsService(medsRepo, eventsRepo)
	scheduleService := service.NewScheduleService(medsRepo)
	adherenceService := service.NewAdherenceService(eventsRepo)
	familyService := service.NewFamilyService(familyRepo, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := reminder.NewPoller(scheduleService, marksRepo, reminder.SlogNotifier{}, clk)
	go poller.Run(ctx)
	go presenceLoop(ctx, familyService, clk)

	serv := api.New(&api.ServicesList{
		MedicationsService: medicationsService,
		ScheduleService:    scheduleService,
		AdherenceService:   adherenceService,
		FamilyService:      familyService,
		Clock:              clk,
	})
	go func() {
		if err := serv.Run(cfg.GetStringOr("API_ADDRESS", "127.0.0.1:8080")); err != nil {
			log.Println("Server error: " + err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	cleanup.CleanUp()
}

// presenceLoop drives the demo presence simulator on its own cadence. It has
// no ordering dependency on the medication core.
func presenceLoop(ctx context.Context, familyService service.FamilyServiceI, clk clock.Clock) {
	ticker := time.NewTicker(presenceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := familyService.SimulatePresence(ctx, clk.Now()); err != nil {
				slog.Error("presence simulation tick failed", "error", err.Error())
			}
		}
	}
}
