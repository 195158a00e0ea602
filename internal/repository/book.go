package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/model"
)

// BookRepository is the book record store. Borrow, Return and Update are
// conditional writes: each is a single UPDATE guarded by the record's
// version and reports the affected row count, 1 on success and 0 when a
// concurrent writer won the race (or the id does not exist).
type BookRepository interface {
	FindAll(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)
	Insert(ctx context.Context, book model.Book) (model.Book, error)
	Update(ctx context.Context, book model.Book) (int64, error)
	Delete(ctx context.Context, id int64) error
	Borrow(ctx context.Context, book model.Book) (int64, error)
	Return(ctx context.Context, book model.Book) (int64, error)
}

type bookRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewBookRepository(db *sqlx.DB, log *zap.Logger) (*bookRepository, error) {
	return &bookRepository{
		db:  db,
		log: log.Named("book-repo"),
	}, nil
}

var bookColumns = []string{
	"id", "isbn", "title", "author", "price",
	"borrow_time", "return_time",
	"created_date", "last_modified_date", "version",
}

func (r *bookRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(bookTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, wrapStoreErr(err)
	}
	return books, nil
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(bookTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, wrapStoreErr(err)
	}
	return book, nil
}

// Insert creates a record at version 0. The lending timestamps are owned
// by the borrow/return transitions and are never taken from the caller: a
// new record always starts Available.
func (r *bookRepository) Insert(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(bookTableName).
		Columns("isbn", "title", "author", "price", "borrow_time", "return_time",
			"created_date", "last_modified_date", "version").
		Values(book.ISBN, book.Title, book.Author, book.Price, nil, nil,
			sq.Expr("now()"), sq.Expr("now()"), 0).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("Insert", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, wrapStoreErr(err)
	}
	return created, nil
}

// Update applies a full edit guarded by the record's version. Lending
// timestamps, created_date and id are never touched here.
func (r *bookRepository) Update(ctx context.Context, book model.Book) (int64, error) {
	query, args, err := qb.Update(bookTableName).
		Set("isbn", book.ISBN).
		Set("title", book.Title).
		Set("author", book.Author).
		Set("price", book.Price).
		Set("last_modified_date", sq.Expr("now()")).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": book.ID, "version": book.Version}).
		ToSql()
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, query, args)
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(bookTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	affected, err := r.exec(ctx, query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Borrow commits the Available -> Borrowed transition. The return time is
// cleared in the same statement, so re-borrowing after a return leaves no
// stale return timestamp behind.
func (r *bookRepository) Borrow(ctx context.Context, book model.Book) (int64, error) {
	query, args, err := qb.Update(bookTableName).
		Set("borrow_time", book.BorrowTime).
		Set("return_time", nil).
		Set("last_modified_date", sq.Expr("now()")).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": book.ID, "version": book.Version}).
		ToSql()
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, query, args)
}

// Return commits the Borrowed -> Available transition, leaving the borrow
// time unchanged.
func (r *bookRepository) Return(ctx context.Context, book model.Book) (int64, error) {
	query, args, err := qb.Update(bookTableName).
		Set("return_time", book.ReturnTime).
		Set("last_modified_date", sq.Expr("now()")).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": book.ID, "version": book.Version}).
		ToSql()
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, query, args)
}

func (r *bookRepository) exec(ctx context.Context, query string, args []interface{}) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Error("exec", zap.String("q", query), zap.Any("args", args))
		return 0, wrapStoreErr(err)
	}
	return res.RowsAffected()
}
