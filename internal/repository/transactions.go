package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/jmoiron/sqlx"
)

// Store owns the connection pool and hands out transaction-bound
// repositories.
type Store struct {
	*Repository
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{Repository: New(db), db: db}
}

func (s *Store) WithTx(ctx context.Context, reason string, fn func(repo *Repository) error) error {
	return s.WithTxOpts(ctx, nil, reason, fn)
}

func (s *Store) WithTxOpts(ctx context.Context, opts *sql.TxOptions, reason string, fn func(repo *Repository) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	var committed bool

	defer func() {
		if panicErr := recover(); panicErr != nil {
			log.Printf("panic in WithTx (%s): %v\n%s", reason, panicErr, debug.Stack())
			err = fmt.Errorf("panic in transaction (%s): %v", reason, panicErr)
		}

		if committed {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil {
			if rbErr == sql.ErrTxDone {
				log.Printf("attempted to roll back transaction, but it was already done: (%s)", reason)
			} else {
				log.Printf("transaction rollback error: (%s) %v", reason, rbErr)
			}
		} else {
			log.Printf("transaction rolled back: (%s)", reason)
		}
	}()

	if err = fn(New(tx)); err != nil {
		log.Printf("error in WithTx (%s): %v", reason, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Printf("error committing transaction: (%s) %v", reason, err)
		return fmt.Errorf("error committing transaction: %w", err)
	}

	committed = true
	return nil
}
