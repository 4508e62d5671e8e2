package repository

import (
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = stderrors.New("record not found")
	ErrDuplicate = stderrors.New("duplicate record")
)

const uniqueViolation = "23505"

// wrapErr maps driver errors onto the package sentinels and annotates the
// rest with the failing operation.
func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, op)
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.Wrapf(ErrDuplicate, "%s: %s", op, pqErr.Constraint)
	}
	return errors.Wrap(err, op)
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, op)
	}
	return nil
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, op)
	}
	return n > 0, nil
}
