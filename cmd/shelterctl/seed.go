package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shelterbeds/matcheckin/internal/adapters/database"
	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
)

// seedFile is the YAML layout accepted by `shelterctl seed`
type seedFile struct {
	Facilities []seedFacility `yaml:"facilities"`
}

type seedFacility struct {
	Name      string         `yaml:"name"`
	Scope     string         `yaml:"scope"`
	Templates []seedTemplate `yaml:"templates"`
	Guests    []seedGuest    `yaml:"guests"`
}

type seedTemplate struct {
	Name         string `yaml:"name"`
	AllMats      string `yaml:"all_mats"`
	HandicapMats string `yaml:"handicap_mats"`
	SocketMats   string `yaml:"socket_mats"`
	WorkMats     string `yaml:"work_mats"`
}

type seedGuest struct {
	FirstName string    `yaml:"first_name"`
	LastName  string    `yaml:"last_name"`
	Birthdate string    `yaml:"birthdate"`
	Notes     string    `yaml:"notes"`
	Bans      []seedBan `yaml:"bans"`
}

type seedBan struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Reason string `yaml:"reason"`
	// Active defaults to true when omitted
	Active *bool `yaml:"active"`
}

// seedData is a seed file resolved into entities with fresh IDs
type seedData struct {
	Facilities []*entities.Facility
	Templates  []*entities.Template
	Guests     []*entities.Guest
	Bans       []*entities.Ban
}

type seedRepos struct {
	facilities repositories.FacilityRepository
	templates  repositories.TemplateRepository
	guests     repositories.GuestRepository
	bans       repositories.BanRepository
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load facilities, templates, guests and bans from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := parseSeed(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			repos := seedRepos{
				facilities: database.NewFacilityAdapter(a.pg),
				templates:  database.NewTemplateAdapter(a.pg),
				guests:     database.NewGuestAdapter(a.pg),
				bans:       database.NewBanAdapter(a.pg),
			}
			if err := repos.apply(ctx, data); err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d facilities, %d templates, %d guests, %d bans\n",
				len(data.Facilities), len(data.Templates), len(data.Guests), len(data.Bans))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseSeed decodes and validates a seed file. Nothing is written, so a bad
// file never leaves a half-seeded database.
func parseSeed(r io.Reader) (*seedData, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	data := &seedData{}
	for _, sf := range file.Facilities {
		if sf.Name == "" || sf.Scope == "" {
			return nil, fmt.Errorf("facility needs a name and a scope")
		}
		facility := &entities.Facility{ID: uuid.NewString(), Name: sf.Name, Scope: sf.Scope}
		data.Facilities = append(data.Facilities, facility)

		for _, st := range sf.Templates {
			template := &entities.Template{
				ID:           uuid.NewString(),
				FacilityID:   facility.ID,
				Name:         st.Name,
				AllMats:      st.AllMats,
				HandicapMats: st.HandicapMats,
				SocketMats:   st.SocketMats,
				WorkMats:     st.WorkMats,
			}
			if err := template.Validate(); err != nil {
				return nil, fmt.Errorf("facility %s template %q: %w", sf.Name, st.Name, err)
			}
			data.Templates = append(data.Templates, template)
		}

		for _, sg := range sf.Guests {
			guest, bans, err := sg.resolve(facility.ID)
			if err != nil {
				return nil, fmt.Errorf("facility %s guest %s %s: %w", sf.Name, sg.FirstName, sg.LastName, err)
			}
			data.Guests = append(data.Guests, guest)
			data.Bans = append(data.Bans, bans...)
		}
	}
	return data, nil
}

func (sg seedGuest) resolve(facilityID string) (*entities.Guest, []*entities.Ban, error) {
	if sg.FirstName == "" {
		return nil, nil, fmt.Errorf("first_name is required")
	}
	guest := &entities.Guest{
		ID:         uuid.NewString(),
		FacilityID: facilityID,
		FirstName:  sg.FirstName,
		LastName:   sg.LastName,
	}
	if sg.Birthdate != "" {
		d, err := entities.ParseDate(sg.Birthdate)
		if err != nil {
			return nil, nil, err
		}
		guest.Birthdate = &d
	}
	if sg.Notes != "" {
		notes := sg.Notes
		guest.Notes = &notes
	}

	var bans []*entities.Ban
	for _, sb := range sg.Bans {
		from, err := entities.ParseDate(sb.From)
		if err != nil {
			return nil, nil, err
		}
		to, err := entities.ParseDate(sb.To)
		if err != nil {
			return nil, nil, err
		}
		if to.Before(from) {
			return nil, nil, fmt.Errorf("ban ends %s before it starts %s", to, from)
		}
		ban := &entities.Ban{
			ID:         uuid.NewString(),
			FacilityID: facilityID,
			GuestID:    guest.ID,
			FromDate:   from,
			ToDate:     to,
			Active:     sb.Active == nil || *sb.Active,
		}
		if sb.Reason != "" {
			reason := sb.Reason
			ban.Reason = &reason
		}
		bans = append(bans, ban)
	}
	return guest, bans, nil
}

// apply inserts facilities first so every foreign key resolves
func (r seedRepos) apply(ctx context.Context, data *seedData) error {
	for _, f := range data.Facilities {
		if err := r.facilities.Create(ctx, f); err != nil {
			return fmt.Errorf("create facility %s: %w", f.Name, err)
		}
	}
	for _, t := range data.Templates {
		if err := r.templates.Create(ctx, t); err != nil {
			return fmt.Errorf("create template %s: %w", t.Name, err)
		}
	}
	for _, g := range data.Guests {
		if err := r.guests.Create(ctx, g); err != nil {
			return fmt.Errorf("create guest %s %s: %w", g.FirstName, g.LastName, err)
		}
	}
	for _, b := range data.Bans {
		if err := r.bans.Create(ctx, b); err != nil {
			return fmt.Errorf("create ban for guest %s: %w", b.GuestID, err)
		}
	}
	log.Info().
		Int("facilities", len(data.Facilities)).
		Int("templates", len(data.Templates)).
		Int("guests", len(data.Guests)).
		Int("bans", len(data.Bans)).
		Msg("seed applied")
	return nil
}
