package repositories

import "context"

// TxRepositories are repositories bound to one open transaction
type TxRepositories interface {
	Checkins() CheckinRepository
	Guests() GuestRepository
	Bans() BanRepository
}

// TxManager runs multi-row mutations inside a single database transaction.
// WithinTx commits when fn returns nil and rolls back otherwise, including
// when ctx is cancelled.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
