package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
	"github.com/nazipyamilov-hub/MedTracker/pkg/httputil"
)

// Reference reminder window from the home screen: the next four hours, top
// three results.
const (
	defaultUpcomingWindow = 240
	defaultUpcomingLimit  = 3
	defaultHistoryDays    = 7
)

type MedicationRequest struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	Notes     string   `json:"notes"`
	Times     []string `json:"times"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Color     string   `json:"color"`
	Icon      string   `json:"icon"`
	IsActive  *bool    `json:"is_active"`
}

type MarkTakenRequest struct {
	Time string `json:"time"`
}

type FamilyMemberRequest struct {
	Name          string `json:"name"`
	Relationship  string `json:"relationship"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Notifications bool   `json:"notifications"`
}

func (s *Server) CreateMedication(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req MedicationRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create medication error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	med, err := s.medicationsService.Create(ctx, &service.CreateMedicationRequest{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Notes:     req.Notes,
		Times:     req.Times,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Color:     req.Color,
		Icon:      req.Icon,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("create medication error: validation failed", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
			return
		}
		logger.Error("create medication error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating medication", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, med)
	logger.Info("medication created")
}

func (s *Server) ListMedications(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	meds, err := s.medicationsService.List(ctx)
	if err != nil {
		logger.Error("getting medications list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting medications list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"medications": meds})
}

func (s *Server) GetMedication(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get medication error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid medication id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	med, err := s.medicationsService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			httputil.WriteErrorResponse(w, http.StatusNotFound, "medication doesn't exist", nil)
			return
		}
		logger.Error("get medication error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting medication", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, med)
}

func (s *Server) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update medication error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid medication id in path value", nil)
		return
	}
	var req MedicationRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update medication error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.medicationsService.Update(ctx, &service.UpdateMedicationRequest{
		ID:        id,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Notes:     req.Notes,
		Times:     req.Times,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Color:     req.Color,
		Icon:      req.Icon,
		IsActive:  isActive,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("update medication error: validation failed", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
			return
		}
		logger.Error("update medication error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating medication", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("medication updated")
}

func (s *Server) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("medication deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid medication id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := s.medicationsService.Delete(ctx, id); err != nil {
		logger.Error("medication deletion error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting medication", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("medication deleted")
}

func (s *Server) MarkTaken(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("mark taken error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid medication id in path value", nil)
		return
	}
	var req MarkTakenRequest
	if r.Body != nil {
		defer r.Body.Close()
		// The body is optional: an empty time means "now".
		sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.medicationsService.MarkTaken(ctx, id, req.Time, s.clk.Now())
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrDoseLimitReached):
			logger.Error("mark taken error: dose limit reached")
			httputil.WriteErrorResponse(w, http.StatusConflict, "all doses for today already taken", nil)
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("mark taken error: validation failed", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
		default:
			logger.Error("mark taken error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while marking dose taken", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("dose marked taken")
}

func (s *Server) MedicationsDueToday(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	meds, err := s.scheduleService.DueToday(ctx, s.clk.Now())
	if err != nil {
		logger.Error("getting due medications error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting due medications", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"medications": meds})
}

func (s *Server) NextDose(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	next, ok, err := s.scheduleService.NextDose(ctx, s.clk.Now())
	if err != nil {
		logger.Error("getting next dose error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting next dose", nil)
		return
	}
	if !ok {
		httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"next": nil})
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"next": next})
}

func (s *Server) UpcomingDoses(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	window, err := strconv.Atoi(r.URL.Query().Get("window"))
	if err != nil || window < 1 {
		window = defaultUpcomingWindow
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultUpcomingLimit
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	upcoming, err := s.scheduleService.UpcomingWithinWindow(ctx, s.clk.Now(), window)
	if err != nil {
		logger.Error("getting upcoming doses error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting upcoming doses", nil)
		return
	}
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"upcoming": upcoming})
}

func (s *Server) DailyProgress(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	progress, err := s.medicationsService.DailyProgress(ctx, s.clk.Now())
	if err != nil {
		logger.Error("getting daily progress error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting daily progress", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, progress)
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	period := service.Period(r.URL.Query().Get("period"))
	switch period {
	case service.PeriodWeek, service.PeriodMonth, service.PeriodQuarter:
	default:
		period = service.PeriodWeek
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	report, err := s.adherenceService.StatsForPeriod(ctx, s.clk.Now(), period)
	if err != nil {
		logger.Error("getting adherence stats error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting adherence stats", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
}

// historyRange resolves from/to query params, defaulting to the trailing week
// ending today.
func (s *Server) historyRange(r *http.Request) (string, string) {
	now := s.clk.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = now.Format(entity.DateLayout)
	}
	if from == "" {
		from = now.AddDate(0, 0, -defaultHistoryDays).Format(entity.DateLayout)
	}
	return from, to
}

func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	from, to := s.historyRange(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	events, err := s.adherenceService.History(ctx, from, to)
	if err != nil {
		if errors.Is(err, errorvalues.ErrBadDate) {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date range", nil)
			return
		}
		logger.Error("getting history error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting history", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"from":   from,
		"to":     to,
		"events": events,
	})
}

func (s *Server) MedicationHistory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("medication history error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid medication id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	events, err := s.adherenceService.MedicationHistory(ctx, id)
	if err != nil {
		logger.Error("medication history error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting medication history", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) ExportHistory(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	from, to := s.historyRange(r)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	data, err := s.adherenceService.ExportCSV(ctx, from, to)
	if err != nil {
		if errors.Is(err, errorvalues.ErrBadDate) {
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date range", nil)
			return
		}
		logger.Error("exporting history error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while exporting history", nil)
		return
	}
	httputil.WriteCSVResponse(w, "medication-report_"+from+"_"+to+".csv", data)
	logger.Info("history exported")
}

func (s *Server) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req FamilyMemberRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("add family member error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	member, err := s.familyService.Add(ctx, &service.FamilyMemberRequest{
		Name:          req.Name,
		Relationship:  req.Relationship,
		Phone:         req.Phone,
		Email:         req.Email,
		Notifications: req.Notifications,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("add family member error: validation failed", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
			return
		}
		logger.Error("add family member error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while adding family member", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, member)
	logger.Info("family member added")
}

func (s *Server) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	members, err := s.familyService.List(ctx)
	if err != nil {
		logger.Error("getting family members error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting family members", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"members": members})
}

func (s *Server) UpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update family member error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid member id in path value", nil)
		return
	}
	var req FamilyMemberRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update family member error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.familyService.Update(ctx, id, &service.FamilyMemberRequest{
		Name:          req.Name,
		Relationship:  req.Relationship,
		Phone:         req.Phone,
		Email:         req.Email,
		Notifications: req.Notifications,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("update family member error: validation failed", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "validation failed", err)
			return
		}
		logger.Error("update family member error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating family member", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("family member updated")
}

func (s *Server) DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("family member deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid member id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := s.familyService.Delete(ctx, id); err != nil {
		logger.Error("family member deletion error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting family member", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("family member deleted")
}
