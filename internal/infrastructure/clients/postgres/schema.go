package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Constraint names surfaced by IsUniqueViolation
const (
	ConstraintCheckinSlot       = "checkins_facility_date_mat_key"
	ConstraintCheckinGuestNight = "checkins_facility_date_guest_key"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS facilities (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		scope      TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS templates (
		id            TEXT PRIMARY KEY,
		facility_id   TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		all_mats      TEXT NOT NULL,
		handicap_mats TEXT NOT NULL DEFAULT '',
		socket_mats   TEXT NOT NULL DEFAULT '',
		work_mats     TEXT NOT NULL DEFAULT '',
		UNIQUE (facility_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS guests (
		id          TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		birthdate   DATE,
		notes       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (facility_id, first_name, last_name)
	)`,
	`CREATE TABLE IF NOT EXISTS bans (
		id          TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		guest_id    TEXT NOT NULL REFERENCES guests(id),
		from_date   DATE NOT NULL,
		to_date     DATE NOT NULL,
		active      BOOLEAN NOT NULL DEFAULT true,
		reason      TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (from_date <= to_date)
	)`,
	`CREATE TABLE IF NOT EXISTS checkins (
		id             TEXT PRIMARY KEY,
		facility_id    TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		checkin_date   DATE NOT NULL,
		mat_number     INTEGER NOT NULL CHECK (mat_number > 0),
		guest_id       TEXT REFERENCES guests(id),
		features       TEXT NOT NULL DEFAULT '',
		comments       TEXT,
		payment_type   TEXT,
		payment_amount NUMERIC(10,2) CHECK (payment_amount >= 0),
		shower_time    TEXT,
		wakeup_time    TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + ConstraintCheckinSlot + ` UNIQUE (facility_id, checkin_date, mat_number),
		CHECK (guest_id IS NOT NULL OR (comments IS NULL AND payment_type IS NULL
			AND payment_amount IS NULL AND shower_time IS NULL AND wakeup_time IS NULL))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + ConstraintCheckinGuestNight + `
		ON checkins (facility_id, checkin_date, guest_id) WHERE guest_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS checkins_guest_idx ON checkins (guest_id)`,
	`CREATE INDEX IF NOT EXISTS bans_guest_idx ON bans (guest_id, from_date, to_date)`,
}

// Migrate creates the tables and indexes if they do not exist
func (c *Client) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("database schema is up to date")
	return nil
}
