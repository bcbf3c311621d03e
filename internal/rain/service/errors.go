package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tkasparek/tkasparek/internal/apperr"
)

// sqlStateQueryCanceled is raised when Postgres cancels a statement, e.g. on
// statement_timeout.
const sqlStateQueryCanceled = "57014"

// classify maps a repository error onto the request error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Unavailable(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateQueryCanceled {
		return apperr.Unavailable(err)
	}
	return apperr.QueryFailure(err)
}
