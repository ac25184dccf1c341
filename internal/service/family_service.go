package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/repository"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// RandomPresence reproduces the demo presence simulator: a flip triggers on
// roughly every fifth tick and the new state is a coin toss.
type RandomPresence struct {
	rng *rand.Rand
}

func NewRandomPresence(seed int64) *RandomPresence {
	return &RandomPresence{rng: rand.New(rand.NewSource(seed))}
}

func (rp *RandomPresence) Next(isOnline bool) (bool, bool) {
	if rp.rng.Float64() <= 0.8 {
		return isOnline, false
	}
	return rp.rng.Float64() > 0.5, true
}

// FamilyService manages household members and their simulated presence. The
// collection has no interaction with medication scheduling.
type FamilyService struct {
	repo     repository.FamilyRepositoryI
	presence PresenceStrategy
}

func NewFamilyService(familyRepo repository.FamilyRepositoryI, presence PresenceStrategy) *FamilyService {
	if familyRepo == nil {
		log.Fatal("provided nil familyRepo for family service")
	}
	if presence == nil {
		presence = NewRandomPresence(time.Now().UnixNano())
	}
	return &FamilyService{
		repo:     familyRepo,
		presence: presence,
	}
}

func (fs *FamilyService) Add(ctx context.Context, req *FamilyMemberRequest) (*entity.FamilyMember, error) {
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	member := &entity.FamilyMember{
		ID:            uuid.New(),
		Name:          req.Name,
		Relationship:  req.Relationship,
		Phone:         req.Phone,
		Email:         req.Email,
		IsOnline:      true,
		LastSeen:      time.Now(),
		Notifications: req.Notifications,
	}
	if err := fs.repo.Create(ctx, member); err != nil {
		return nil, errors.New("family repository error: " + err.Error())
	}
	return member, nil
}

func (fs *FamilyService) Update(ctx context.Context, id uuid.UUID, req *FamilyMemberRequest) error {
	if err := validateStruct(*req); err != nil {
		return err
	}
	member, err := fs.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrFamilyMemberNotFound) {
			slog.Debug("update for unknown family member ignored", "id", id.String())
			return nil
		}
		return errors.New("family repository error: " + err.Error())
	}
	member.Name = req.Name
	member.Relationship = req.Relationship
	member.Phone = req.Phone
	member.Email = req.Email
	member.Notifications = req.Notifications
	if err := fs.repo.Update(ctx, member); err != nil {
		if errors.Is(err, errorvalues.ErrFamilyMemberNotFound) {
			return nil
		}
		return errors.New("family repository error: " + err.Error())
	}
	return nil
}

func (fs *FamilyService) Delete(ctx context.Context, id uuid.UUID) error {
	err := fs.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrFamilyMemberNotFound) {
			slog.Debug("delete for unknown family member ignored", "id", id.String())
			return nil
		}
		return errors.New("family repository error: " + err.Error())
	}
	return nil
}

func (fs *FamilyService) List(ctx context.Context) ([]*entity.FamilyMember, error) {
	members, err := fs.repo.List(ctx)
	if err != nil {
		return nil, errors.New("family repository error: " + err.Error())
	}
	return members, nil
}

// SimulatePresence runs one tick of the presence strategy over every member.
// Members whose flag flipped get LastSeen stamped with now.
func (fs *FamilyService) SimulatePresence(ctx context.Context, now time.Time) error {
	members, err := fs.repo.List(ctx)
	if err != nil {
		return errors.New("family repository error: " + err.Error())
	}
	for _, member := range members {
		newState, changed := fs.presence.Next(member.IsOnline)
		if !changed {
			continue
		}
		member.IsOnline = newState
		member.LastSeen = now
		if err := fs.repo.Update(ctx, member); err != nil {
			if errors.Is(err, errorvalues.ErrFamilyMemberNotFound) {
				// Member removed mid-tick, nothing to update.
				continue
			}
			return errors.New("family repository error: " + err.Error())
		}
	}
	return nil
}
