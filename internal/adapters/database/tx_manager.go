package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// TxManager implements repositories.TxManager over a postgres client
type TxManager struct {
	client *postgres.Client
}

// NewTxManager creates a new transaction manager
func NewTxManager(client *postgres.Client) repositories.TxManager {
	return &TxManager{client: client}
}

// txRepos binds every adapter to the same *sqlx.Tx
type txRepos struct {
	tx *sqlx.Tx
}

func (r *txRepos) Checkins() repositories.CheckinRepository { return &CheckinAdapter{db: r.tx} }
func (r *txRepos) Guests() repositories.GuestRepository     { return &GuestAdapter{db: r.tx} }
func (r *txRepos) Bans() repositories.BanRepository         { return &BanAdapter{db: r.tx} }

// WithinTx runs fn in a transaction. The transaction is committed only when
// fn returns nil; errors and panics roll it back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.TxRepositories) error) (err error) {
	tx, err := m.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx)
			panic(p)
		}
		if err != nil {
			rollback(tx)
		}
	}()

	if err = fn(ctx, &txRepos{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Error().Err(err).Msg("failed to roll back transaction")
	}
}
