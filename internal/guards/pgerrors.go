package guards

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

const uniqueViolationCode = "23505"

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return httpx.ErrDuplicate
	}
	return err
}
