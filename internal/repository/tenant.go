package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/model"
)

type TenantRepository interface {
	List(ctx context.Context) ([]model.Tenant, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Tenant, error)
	Insert(ctx context.Context, tenant model.Tenant) (model.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewTenantRepository(db *sqlx.DB, log *zap.Logger) (*tenantRepository, error) {
	return &tenantRepository{
		db:  db,
		log: log.Named("tenant-repo"),
	}, nil
}

var tenantColumns = []string{
	"id", "name", "description", "email",
	"created_date", "last_modified_date",
}

func (r *tenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	query, args, err := qb.Select(tenantColumns...).
		From(tenantTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	tenants := make([]model.Tenant, 0)
	if err := r.db.SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, wrapStoreErr(err)
	}
	return tenants, nil
}

func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Tenant, error) {
	query, args, err := qb.Select(tenantColumns...).
		From(tenantTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Tenant{}, err
	}

	var tenant model.Tenant
	if err := r.db.GetContext(ctx, &tenant, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tenant{}, errs.ErrNotFound
		}
		return model.Tenant{}, wrapStoreErr(err)
	}
	return tenant, nil
}

func (r *tenantRepository) Insert(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	query, args, err := qb.Insert(tenantTableName).
		Columns("id", "name", "description", "email", "created_date", "last_modified_date").
		Values(uuid.New(), tenant.Name, tenant.Description, tenant.Email,
			sq.Expr("now()"), sq.Expr("now()")).
		Suffix("returning " + joinColumns(tenantColumns)).
		ToSql()
	if err != nil {
		return model.Tenant{}, err
	}

	var created model.Tenant
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Tenant{}, errs.ErrAlreadyExists
		}
		r.log.Error("Insert", zap.String("q", query), zap.Any("args", args))
		return model.Tenant{}, wrapStoreErr(err)
	}
	return created, nil
}

func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(tenantTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapStoreErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
