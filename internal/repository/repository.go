package repository

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/walterfan/reminder-service/internal/errs"
)

const (
	bookTableName   = `book`
	taskTableName   = `task`
	tenantTableName = `tenant`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// wrapStoreErr maps driver-level failures onto errs.ErrStoreUnavailable so
// callers can tell infrastructure trouble from logical errors. Errors the
// server actually answered with pass through unchanged.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return errors.WithMessage(errs.ErrStoreUnavailable, err.Error())
	}
	return err
}
