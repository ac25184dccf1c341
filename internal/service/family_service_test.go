package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/nazipyamilov-hub/MedTracker/internal/error_values"
	"github.com/nazipyamilov-hub/MedTracker/internal/service"
	"github.com/nazipyamilov-hub/MedTracker/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type familyRepoMock struct {
	members []*entity.FamilyMember
}

func (f *familyRepoMock) Create(ctx context.Context, member *entity.FamilyMember) error {
	cp := *member
	f.members = append(f.members, &cp)
	return nil
}

func (f *familyRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.FamilyMember, error) {
	for _, m := range f.members {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errorvalues.ErrFamilyMemberNotFound
}

func (f *familyRepoMock) List(ctx context.Context) ([]*entity.FamilyMember, error) {
	out := make([]*entity.FamilyMember, 0, len(f.members))
	for _, m := range f.members {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *familyRepoMock) Update(ctx context.Context, member *entity.FamilyMember) error {
	for i, m := range f.members {
		if m.ID == member.ID {
			cp := *member
			f.members[i] = &cp
			return nil
		}
	}
	return errorvalues.ErrFamilyMemberNotFound
}

func (f *familyRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	for i, m := range f.members {
		if m.ID == id {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return errorvalues.ErrFamilyMemberNotFound
}

// scriptedPresence replays a fixed transition sequence.
type scriptedPresence struct {
	states  []bool
	changes []bool
	pos     int
}

func (s *scriptedPresence) Next(isOnline bool) (bool, bool) {
	state, changed := s.states[s.pos], s.changes[s.pos]
	s.pos++
	if !changed {
		return isOnline, false
	}
	return state, true
}

func TestAddFamilyMember(t *testing.T) {
	ctx := context.Background()
	t.Run("successfully added", func(t *testing.T) {
		repo := &familyRepoMock{}
		serv := service.NewFamilyService(repo, &scriptedPresence{})
		member, err := serv.Add(ctx, &service.FamilyMemberRequest{
			Name:         "Aigul",
			Relationship: "mother",
			Phone:        "+7 777 123 45 67",
		})
		require.NoError(t, err)
		assert.True(t, member.IsOnline, "new members start online")
		require.Len(t, repo.members, 1)
	})
	t.Run("missing relationship rejected", func(t *testing.T) {
		repo := &familyRepoMock{}
		serv := service.NewFamilyService(repo, &scriptedPresence{})
		_, err := serv.Add(ctx, &service.FamilyMemberRequest{Name: "Aigul"})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
		assert.Empty(t, repo.members)
	})
	t.Run("bad email rejected", func(t *testing.T) {
		repo := &familyRepoMock{}
		serv := service.NewFamilyService(repo, &scriptedPresence{})
		_, err := serv.Add(ctx, &service.FamilyMemberRequest{
			Name:         "Aigul",
			Relationship: "mother",
			Email:        "not-an-email",
		})
		assert.ErrorIs(t, err, errorvalues.ErrValidation)
	})
}

func TestUpdateFamilyMember(t *testing.T) {
	ctx := context.Background()
	t.Run("unknown member is a no-op", func(t *testing.T) {
		serv := service.NewFamilyService(&familyRepoMock{}, &scriptedPresence{})
		err := serv.Update(ctx, uuid.New(), &service.FamilyMemberRequest{
			Name:         "Aigul",
			Relationship: "mother",
		})
		assert.NoError(t, err)
	})
}

func TestSimulatePresence(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)
	earlier := now.Add(-time.Hour)

	online := &entity.FamilyMember{ID: uuid.New(), Name: "Aigul", Relationship: "mother", IsOnline: true, LastSeen: earlier}
	offline := &entity.FamilyMember{ID: uuid.New(), Name: "Daniyar", Relationship: "brother", IsOnline: false, LastSeen: earlier}
	repo := &familyRepoMock{members: []*entity.FamilyMember{online, offline}}

	// First member flips offline, second stays as is.
	strategy := &scriptedPresence{states: []bool{false, false}, changes: []bool{true, false}}
	serv := service.NewFamilyService(repo, strategy)

	require.NoError(t, serv.SimulatePresence(ctx, now))

	flipped, err := repo.GetByID(ctx, online.ID)
	require.NoError(t, err)
	assert.False(t, flipped.IsOnline)
	assert.Equal(t, now, flipped.LastSeen, "flip stamps last seen")

	untouched, err := repo.GetByID(ctx, offline.ID)
	require.NoError(t, err)
	assert.False(t, untouched.IsOnline)
	assert.Equal(t, earlier, untouched.LastSeen, "no flip, no stamp")
}
