package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/clock"
)

type Server struct {
	mx                 *chi.Mux
	medicationsService service.MedicationsServiceI
	scheduleService    service.ScheduleServiceI
	adherenceService   service.AdherenceServiceI
	familyService      service.FamilyServiceI
	clk                clock.Clock
}

type ServicesList struct {
	MedicationsService service.MedicationsServiceI
	ScheduleService    service.ScheduleServiceI
	AdherenceService   service.AdherenceServiceI
	FamilyService      service.FamilyServiceI
	Clock              clock.Clock
}

func New(servicesOptions *ServicesList) *Server {
	clk := servicesOptions.Clock
	if clk == nil {
		clk = clock.System()
	}
	s := &Server{
		mx:                 chi.NewMux(),
		medicationsService: servicesOptions.MedicationsService,
		scheduleService:    servicesOptions.ScheduleService,
		adherenceService:   servicesOptions.AdherenceService,
		familyService:      servicesOptions.FamilyService,
		clk:                clk,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Route("/medications", func(r chi.Router) {
			r.Get("/", s.ListMedications)
			r.Post("/", s.CreateMedication)
			r.Get("/today", s.MedicationsDueToday)
			r.Get("/next", s.NextDose)
			r.Get("/upcoming", s.UpcomingDoses)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetMedication)
				r.Put("/", s.UpdateMedication)
				r.Delete("/", s.DeleteMedication)
				r.Post("/taken", s.MarkTaken)
				r.Get("/history", s.MedicationHistory)
			})
		})
		r.Get("/progress", s.DailyProgress)
		r.Get("/stats", s.Stats)
		r.Get("/history", s.History)
		r.Get("/history/export", s.ExportHistory)
		r.Route("/family", func(r chi.Router) {
			r.Get("/", s.ListFamilyMembers)
			r.Post("/", s.AddFamilyMember)
			r.Put("/{id}", s.UpdateFamilyMember)
			r.Delete("/{id}", s.DeleteFamilyMember)
		})
	})
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mx
}

func (s *Server) Run(address string) error {
	return http.ListenAndServe(address, s.mx)
}
