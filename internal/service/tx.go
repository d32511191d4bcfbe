package service

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// txRunner scopes a unit of work to one database transaction.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}
