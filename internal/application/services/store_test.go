package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// memStore is an in-memory stand-in for the postgres adapters. It enforces
// the same unique keys and conditional writes, and rolls back a WithinTx
// call that returns an error.
type memStore struct {
	mu         sync.Mutex
	facilities map[string]*entities.Facility
	templates  map[string]*entities.Template
	guests     map[string]*entities.Guest
	bans       map[string]*entities.Ban
	checkins   map[string]*entities.Checkin

	// fail makes the named operation return the error, e.g. "guests.delete"
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		facilities: map[string]*entities.Facility{},
		templates:  map[string]*entities.Template{},
		guests:     map[string]*entities.Guest{},
		bans:       map[string]*entities.Ban{},
		checkins:   map[string]*entities.Checkin{},
		fail:       map[string]error{},
	}
}

func (s *memStore) injected(op string) error {
	return s.fail[op]
}

func copyCheckin(c *entities.Checkin) *entities.Checkin {
	cp := *c
	if c.GuestID != nil {
		id := *c.GuestID
		cp.GuestID = &id
	}
	return &cp
}

func (s *memStore) Facilities() repositories.FacilityRepository { return memFacilities{s} }
func (s *memStore) Templates() repositories.TemplateRepository  { return memTemplates{s} }
func (s *memStore) Guests() repositories.GuestRepository        { return memGuests{s} }
func (s *memStore) Bans() repositories.BanRepository            { return memBans{s} }
func (s *memStore) Checkins() repositories.CheckinRepository    { return memCheckins{s} }

// WithinTx snapshots the mutable tables and restores them if fn fails
func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.TxRepositories) error) error {
	s.mu.Lock()
	checkins := make(map[string]*entities.Checkin, len(s.checkins))
	for id, c := range s.checkins {
		checkins[id] = copyCheckin(c)
	}
	guests := make(map[string]*entities.Guest, len(s.guests))
	for id, g := range s.guests {
		cp := *g
		guests[id] = &cp
	}
	bans := make(map[string]*entities.Ban, len(s.bans))
	for id, b := range s.bans {
		cp := *b
		bans[id] = &cp
	}
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.checkins, s.guests, s.bans = checkins, guests, bans
		s.mu.Unlock()
		return err
	}
	return nil
}

type memFacilities struct{ s *memStore }

func (r memFacilities) Create(_ context.Context, f *entities.Facility) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *f
	r.s.facilities[f.ID] = &cp
	return nil
}

func (r memFacilities) GetByID(_ context.Context, id string) (*entities.Facility, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.facilities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id)).WithField("facility_id")
	}
	cp := *f
	return &cp, nil
}

type memTemplates struct{ s *memStore }

func (r memTemplates) Create(_ context.Context, t *entities.Template) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.templates[t.ID] = &cp
	return nil
}

func (r memTemplates) GetByID(_ context.Context, id string) (*entities.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.templates[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("template with id %s not found", id)).WithField("template_id")
	}
	cp := *t
	return &cp, nil
}

type memGuests struct{ s *memStore }

func (r memGuests) Create(_ context.Context, g *entities.Guest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *g
	r.s.guests[g.ID] = &cp
	return nil
}

func (r memGuests) GetByID(_ context.Context, id string) (*entities.Guest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guests[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("guest with id %s not found", id)).WithField("guest_id")
	}
	cp := *g
	return &cp, nil
}

func (r memGuests) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("guests.delete"); err != nil {
		return err
	}
	if _, ok := r.s.guests[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("guest with id %s not found", id)).WithField("guest_id")
	}
	for _, c := range r.s.checkins {
		if c.GuestID != nil && *c.GuestID == id {
			return apperrors.NewInternalError("guest still referenced by checkins", nil)
		}
	}
	delete(r.s.guests, id)
	return nil
}

type memBans struct{ s *memStore }

func (r memBans) Create(_ context.Context, b *entities.Ban) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.bans[b.ID] = &cp
	return nil
}

func (r memBans) ListActiveCovering(_ context.Context, guestID string, date entities.Date) ([]*entities.Ban, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Ban
	for _, b := range r.s.bans {
		if b.GuestID == guestID && b.Covers(date) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memBans) MoveToGuest(_ context.Context, from, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.bans {
		if b.GuestID == from {
			b.GuestID = to
			n++
		}
	}
	return n, nil
}

type memCheckins struct{ s *memStore }

func (r memCheckins) CreateBatch(_ context.Context, checkins []*entities.Checkin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range checkins {
		for _, existing := range r.s.checkins {
			if existing.FacilityID == c.FacilityID && existing.CheckinDate.Equal(c.CheckinDate) && existing.MatNumber == c.MatNumber {
				return apperrors.NewConflictError("a checkin already exists for this facility, date and mat").WithField("mat_number")
			}
		}
	}
	for _, c := range checkins {
		r.s.checkins[c.ID] = copyCheckin(c)
	}
	return nil
}

func (r memCheckins) GetByID(_ context.Context, id string) (*entities.Checkin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.checkins[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("checkin with id %s not found", id)).WithField("checkin_id")
	}
	return copyCheckin(c), nil
}

func (r memCheckins) filter(keep func(*entities.Checkin) bool) []*entities.Checkin {
	out := []*entities.Checkin{}
	for _, c := range r.s.checkins {
		if keep(c) {
			out = append(out, copyCheckin(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckinDate.Equal(out[j].CheckinDate) {
			return out[i].CheckinDate.Before(out[j].CheckinDate)
		}
		return out[i].MatNumber < out[j].MatNumber
	})
	return out
}

func (r memCheckins) ListByFacilityDate(_ context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c *entities.Checkin) bool {
		return c.FacilityID == facilityID && c.CheckinDate.Equal(date)
	}), nil
}

func (r memCheckins) CountByFacilityDate(ctx context.Context, facilityID string, date entities.Date) (int, error) {
	list, err := r.ListByFacilityDate(ctx, facilityID, date)
	return len(list), err
}

func (r memCheckins) ListByGuest(_ context.Context, guestID string) ([]*entities.Checkin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c *entities.Checkin) bool {
		return c.GuestID != nil && *c.GuestID == guestID
	}), nil
}

func (r memCheckins) FindByGuestDate(_ context.Context, facilityID, guestID string, date entities.Date) (*entities.Checkin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := r.filter(func(c *entities.Checkin) bool {
		return c.FacilityID == facilityID && c.GuestID != nil && *c.GuestID == guestID && c.CheckinDate.Equal(date)
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r memCheckins) AssignIfAvailable(_ context.Context, checkin *entities.Checkin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected("checkins.assign"); err != nil {
		return err
	}
	current, ok := r.s.checkins[checkin.ID]
	if !ok || current.GuestID != nil {
		return apperrors.NewConflictError(fmt.Sprintf("checkin %s is no longer available", checkin.ID)).WithField("checkin_id")
	}
	for _, c := range r.s.checkins {
		if c.ID != checkin.ID && c.FacilityID == current.FacilityID && c.CheckinDate.Equal(current.CheckinDate) &&
			c.GuestID != nil && *c.GuestID == *checkin.GuestID {
			return apperrors.NewConflictError("guest already occupies another mat on this date").WithField("guest_id")
		}
	}
	guestID := *checkin.GuestID
	current.GuestID = &guestID
	current.Details = checkin.Details
	return nil
}

func (r memCheckins) ClearIfHeldBy(_ context.Context, checkinID, guestID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.checkins[checkinID]
	if !ok || current.GuestID == nil || *current.GuestID != guestID {
		return apperrors.NewConflictError(fmt.Sprintf("checkin %s is no longer held by guest %s", checkinID, guestID)).WithField("checkin_id")
	}
	current.ClearAssignment()
	return nil
}

func (r memCheckins) UpdateDetails(_ context.Context, checkin *entities.Checkin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.checkins[checkin.ID]
	if !ok || current.GuestID == nil {
		return apperrors.NewConflictError(fmt.Sprintf("checkin %s is not assigned", checkin.ID)).WithField("checkin_id")
	}
	current.Details = checkin.Details
	return nil
}

func (r memCheckins) DeleteByFacilityDate(_ context.Context, facilityID string, date entities.Date) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	night := r.filter(func(c *entities.Checkin) bool {
		return c.FacilityID == facilityID && c.CheckinDate.Equal(date)
	})
	for _, c := range night {
		if c.GuestID != nil {
			return 0, nil
		}
	}
	for _, c := range night {
		delete(r.s.checkins, c.ID)
	}
	return int64(len(night)), nil
}

func (r memCheckins) ReassignGuest(_ context.Context, facilityID, from, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.checkins {
		if c.FacilityID == facilityID && c.GuestID != nil && *c.GuestID == from {
			id := to
			c.GuestID = &id
			n++
		}
	}
	return n, nil
}
