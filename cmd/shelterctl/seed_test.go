package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

const sampleSeed = `
facilities:
  - name: North
    scope: facility:north
    templates:
      - name: Winter
        all_mats: "1-10"
        handicap_mats: "1,2"
        socket_mats: "9-10"
    guests:
      - first_name: Ada
        last_name: Byron
        birthdate: "1985-12-10"
        bans:
          - from: "2024-02-01"
            to: "2024-02-07"
            reason: fighting
      - first_name: Alan
        last_name: Turing
        bans:
          - from: "2024-01-01"
            to: "2024-01-02"
            active: false
`

func TestParseSeed(t *testing.T) {
	data, err := parseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	require.Len(t, data.Facilities, 1)
	require.Len(t, data.Templates, 1)
	require.Len(t, data.Guests, 2)
	require.Len(t, data.Bans, 2)

	facility := data.Facilities[0]
	assert.NotEmpty(t, facility.ID)
	assert.Equal(t, facility.ID, data.Templates[0].FacilityID)
	assert.Equal(t, "9-10", data.Templates[0].SocketMats)

	ada := data.Guests[0]
	assert.Equal(t, facility.ID, ada.FacilityID)
	require.NotNil(t, ada.Birthdate)
	assert.Equal(t, "1985-12-10", ada.Birthdate.String())

	assert.Equal(t, ada.ID, data.Bans[0].GuestID)
	assert.True(t, data.Bans[0].Active)
	require.NotNil(t, data.Bans[0].Reason)
	assert.Equal(t, "fighting", *data.Bans[0].Reason)
	assert.False(t, data.Bans[1].Active)
}

func TestParseSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": `facilities: [{name: N, scope: s, colour: red}]`,
		"missing scope": `facilities: [{name: N}]`,
		"bad template": `
facilities:
  - name: N
    scope: s
    templates: [{name: T, all_mats: "1-4", work_mats: "7"}]`,
		"bad birthdate": `
facilities:
  - name: N
    scope: s
    guests: [{first_name: A, birthdate: "10/12/1985"}]`,
		"inverted ban": `
facilities:
  - name: N
    scope: s
    guests: [{first_name: A, bans: [{from: "2024-02-07", to: "2024-02-01"}]}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseSeed(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

type recordingRepo struct {
	created []string
	failOn  string
}

func (r *recordingRepo) record(kind, id string) error {
	if kind == r.failOn {
		return errors.New("insert failed")
	}
	r.created = append(r.created, kind+":"+id)
	return nil
}

type facilityRepo struct{ *recordingRepo }

func (r facilityRepo) Create(_ context.Context, f *entities.Facility) error {
	return r.record("facility", f.Name)
}

func (r facilityRepo) GetByID(context.Context, string) (*entities.Facility, error) {
	return nil, errors.New("not used")
}

type templateRepo struct{ *recordingRepo }

func (r templateRepo) Create(_ context.Context, t *entities.Template) error {
	return r.record("template", t.Name)
}

func (r templateRepo) GetByID(context.Context, string) (*entities.Template, error) {
	return nil, errors.New("not used")
}

type guestRepo struct{ *recordingRepo }

func (r guestRepo) Create(_ context.Context, g *entities.Guest) error {
	return r.record("guest", g.FirstName)
}

func (r guestRepo) GetByID(context.Context, string) (*entities.Guest, error) {
	return nil, errors.New("not used")
}

func (r guestRepo) Delete(context.Context, string) error { return errors.New("not used") }

type banRepo struct{ *recordingRepo }

func (r banRepo) Create(_ context.Context, b *entities.Ban) error {
	return r.record("ban", b.FromDate.String())
}

func (r banRepo) ListActiveCovering(context.Context, string, entities.Date) ([]*entities.Ban, error) {
	return nil, errors.New("not used")
}

func (r banRepo) MoveToGuest(context.Context, string, string) (int64, error) {
	return 0, errors.New("not used")
}

func newSeedRepos(rec *recordingRepo) seedRepos {
	return seedRepos{
		facilities: facilityRepo{rec},
		templates:  templateRepo{rec},
		guests:     guestRepo{rec},
		bans:       banRepo{rec},
	}
}

func TestSeedRepos_Apply(t *testing.T) {
	data, err := parseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	t.Run("inserts parents before children", func(t *testing.T) {
		rec := &recordingRepo{}
		require.NoError(t, newSeedRepos(rec).apply(context.Background(), data))
		assert.Equal(t, []string{
			"facility:North",
			"template:Winter",
			"guest:Ada",
			"guest:Alan",
			"ban:2024-02-01",
			"ban:2024-01-01",
		}, rec.created)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		rec := &recordingRepo{failOn: "guest"}
		err := newSeedRepos(rec).apply(context.Background(), data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create guest Ada")
		assert.Equal(t, []string{"facility:North", "template:Winter"}, rec.created)
	})
}
