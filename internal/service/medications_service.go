package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

const defaultFrequency = "As prescribed"

type MedicationsService struct {
	medsRepo   repository.MedicationsRepositoryI
	eventsRepo repository.DoseEventsRepositoryI
}

func NewMedicationsService(medsRepo repository.MedicationsRepositoryI, eventsRepo repository.DoseEventsRepositoryI) *MedicationsService {
	if medsRepo == nil || eventsRepo == nil {
		log.Fatal("on medications service provided nil repos")
	}
	return &MedicationsService{
		medsRepo:   medsRepo,
		eventsRepo: eventsRepo,
	}
}

func (ms *MedicationsService) Create(ctx context.Context, req *CreateMedicationRequest) (*entity.Medication, error) {
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	times := normalizeTimes(req.Times)
	if len(times) == 0 {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("at least one dose time is required"))
	}
	frequency := req.Frequency
	if frequency == "" {
		frequency = defaultFrequency
	}
	icon := req.Icon
	if icon == "" {
		icon = "pills"
	}
	now := time.Now()
	med := &entity.Medication{
		ID:          uuid.New(),
		Name:        req.Name,
		Dosage:      req.Dosage,
		Frequency:   frequency,
		Notes:       req.Notes,
		Times:       times,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
		Icon:        icon,
		IsActive:    true,
		TakenCount:  0,
		TotalPerDay: len(times),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ms.medsRepo.Create(ctx, med); err != nil {
		return nil, errors.New("medications repository error: " + err.Error())
	}
	return med, nil
}

func (ms *MedicationsService) Update(ctx context.Context, req *UpdateMedicationRequest) error {
	if err := validateStruct(*req); err != nil {
		return err
	}
	med, err := ms.medsRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			// Lookup failures on mutations are silent no-ops.
			slog.Debug("update for unknown medication ignored", "id", req.ID.String())
			return nil
		}
		return errors.New("medications repository error: " + err.Error())
	}
	times := normalizeTimes(req.Times)
	if len(times) == 0 {
		return errors.Join(errorvalues.ErrValidation, errors.New("at least one dose time is required"))
	}
	med.Name = req.Name
	med.Dosage = req.Dosage
	med.Frequency = req.Frequency
	if med.Frequency == "" {
		med.Frequency = defaultFrequency
	}
	med.Notes = req.Notes
	med.Times = times
	med.TotalPerDay = len(times)
	med.StartDate = req.StartDate
	med.EndDate = req.EndDate
	med.Color = req.Color
	if req.Icon != "" {
		med.Icon = req.Icon
	}
	med.IsActive = req.IsActive
	med.UpdatedAt = time.Now()
	if err := ms.medsRepo.Update(ctx, med); err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			return nil
		}
		return errors.New("medications repository error: " + err.Error())
	}
	return nil
}

func (ms *MedicationsService) Delete(ctx context.Context, id uuid.UUID) error {
	err := ms.medsRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			slog.Debug("delete for unknown medication ignored", "id", id.String())
			return nil
		}
		return errors.New("medications repository error: " + err.Error())
	}
	return nil
}

func (ms *MedicationsService) Get(ctx context.Context, id uuid.UUID) (*entity.Medication, error) {
	med, err := ms.medsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			return nil, err
		}
		return nil, errors.New("medications repository error: " + err.Error())
	}
	return med, nil
}

func (ms *MedicationsService) List(ctx context.Context) ([]*entity.Medication, error) {
	meds, err := ms.medsRepo.List(ctx)
	if err != nil {
		return nil, errors.New("medications repository error: " + err.Error())
	}
	return meds, nil
}

// MarkTaken advances the medication's daily progress and appends one taken
// event to the ledger. On the first dose of a new calendar day the counter
// resets to 1; the count is never decremented. Once every slot for today is
// satisfied further marks are rejected without touching state.
func (ms *MedicationsService) MarkTaken(ctx context.Context, id uuid.UUID, clockTime string, now time.Time) error {
	med, err := ms.medsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrMedicationNotFound) {
			slog.Debug("mark-taken for unknown medication ignored", "id", id.String())
			return nil
		}
		return errors.New("medications repository error: " + err.Error())
	}

	today := dayOf(now)
	if med.CompleteFor(today) {
		return errorvalues.ErrDoseLimitReached
	}

	if clockTime == "" {
		clockTime = now.Format(entity.TimeLayout)
	} else if _, err := parseClockMinutes(clockTime); err != nil {
		return errors.Join(errorvalues.ErrValidation, err)
	}

	if med.LastTakenDate == today {
		med.TakenCount++
	} else {
		med.LastTakenDate = today
		med.TakenCount = 1
	}
	med.UpdatedAt = now
	if err := ms.medsRepo.Update(ctx, med); err != nil {
		return errors.New("medications repository error: " + err.Error())
	}

	event := &entity.DoseEvent{
		ID:             uuid.New(),
		MedicationID:   med.ID,
		MedicationName: med.Name,
		Date:           today,
		Time:           clockTime,
		Status:         entity.DoseTaken,
		Timestamp:      now,
	}
	if err := ms.eventsRepo.Append(ctx, event); err != nil {
		return errors.New("dose events repository error: " + err.Error())
	}
	return nil
}

func (ms *MedicationsService) DailyProgress(ctx context.Context, now time.Time) (*entity.DailyProgress, error) {
	meds, err := ms.medsRepo.List(ctx)
	if err != nil {
		return nil, errors.New("medications repository error: " + err.Error())
	}
	today := dayOf(now)
	progress := &entity.DailyProgress{TotalMedications: len(meds)}
	for _, med := range meds {
		if !med.IsActive {
			continue
		}
		progress.ActiveMedications++
		progress.TakenToday += med.TakenOn(today)
		progress.TotalToday += med.TotalPerDay
	}
	if progress.TotalToday > 0 {
		progress.CompletionPercent = int(math.Round(float64(progress.TakenToday) / float64(progress.TotalToday) * 100))
	}
	return progress, nil
}
