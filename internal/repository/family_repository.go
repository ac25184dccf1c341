package repository

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
)

// FamilyRepository holds the household members. The collection is independent
// of medications and carries no referential integrity requirement.
type FamilyRepository struct {
	mu    sync.RWMutex
	store KVStore
	items []*entity.FamilyMember
}

func NewFamilyRepo(store KVStore) *FamilyRepository {
	if store == nil {
		log.Fatal("provided nil store for familyRepo")
	}
	repo := &FamilyRepository{store: store}
	repo.items = loadCollection[*entity.FamilyMember](store, KeyFamilyMembers)
	return repo
}

func cloneMember(m *entity.FamilyMember) *entity.FamilyMember {
	cp := *m
	return &cp
}

func (fr *FamilyRepository) Create(ctx context.Context, member *entity.FamilyMember) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.items = append(fr.items, cloneMember(member))
	persist(fr.store, KeyFamilyMembers, fr.items)
	return nil
}

func (fr *FamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FamilyMember, error) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	for _, m := range fr.items {
		if m.ID == id {
			return cloneMember(m), nil
		}
	}
	return nil, errorvalues.ErrFamilyMemberNotFound
}

func (fr *FamilyRepository) List(ctx context.Context) ([]*entity.FamilyMember, error) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	out := make([]*entity.FamilyMember, 0, len(fr.items))
	for _, m := range fr.items {
		out = append(out, cloneMember(m))
	}
	return out, nil
}

func (fr *FamilyRepository) Update(ctx context.Context, member *entity.FamilyMember) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for i, m := range fr.items {
		if m.ID == member.ID {
			fr.items[i] = cloneMember(member)
			persist(fr.store, KeyFamilyMembers, fr.items)
			return nil
		}
	}
	return errorvalues.ErrFamilyMemberNotFound
}

func (fr *FamilyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for i, m := range fr.items {
		if m.ID == id {
			fr.items = append(fr.items[:i], fr.items[i+1:]...)
			persist(fr.store, KeyFamilyMembers, fr.items)
			return nil
		}
	}
	return errorvalues.ErrFamilyMemberNotFound
}
