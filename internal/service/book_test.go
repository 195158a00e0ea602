package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/internal/service"
)

// fakeBookRepo is an in-memory book store with the same conditional-update
// contract as the SQL repository: a write is applied atomically only when
// the stored version still equals the one carried by the record, and the
// affected-row count reports the outcome.
type fakeBookRepo struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]model.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[int64]model.Book)}
}

func (f *fakeBookRepo) FindAll(_ context.Context) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Book, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookRepo) FindByID(_ context.Context, id int64) (model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return book, nil
}

func (f *fakeBookRepo) Insert(_ context.Context, book model.Book) (model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	book.ID = f.nextID
	book.Version = 0
	book.BorrowTime = nil
	book.ReturnTime = nil
	now := model.Now()
	book.CreatedDate = now
	book.LastModifiedDate = now
	f.books[book.ID] = book
	return book, nil
}

func (f *fakeBookRepo) Update(_ context.Context, book model.Book) (int64, error) {
	return f.conditional(book, func(cur model.Book) model.Book {
		cur.ISBN = book.ISBN
		cur.Title = book.Title
		cur.Author = book.Author
		cur.Price = book.Price
		return cur
	})
}

func (f *fakeBookRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepo) Borrow(_ context.Context, book model.Book) (int64, error) {
	return f.conditional(book, func(cur model.Book) model.Book {
		cur.BorrowTime = book.BorrowTime
		cur.ReturnTime = nil
		return cur
	})
}

func (f *fakeBookRepo) Return(_ context.Context, book model.Book) (int64, error) {
	return f.conditional(book, func(cur model.Book) model.Book {
		cur.ReturnTime = book.ReturnTime
		return cur
	})
}

func (f *fakeBookRepo) conditional(book model.Book, mutate func(model.Book) model.Book) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.books[book.ID]
	if !ok || cur.Version != book.Version {
		return 0, nil
	}
	next := mutate(cur)
	next.Version = cur.Version + 1
	next.LastModifiedDate = model.Now()
	f.books[book.ID] = next
	return 1, nil
}

func newBookService(t *testing.T) (*service.BookService, *fakeBookRepo) {
	t.Helper()
	repo := newFakeBookRepo()
	return service.NewBookService(repo, nil, zap.NewExample().Named("test")), repo
}

func insertBook(t *testing.T, svc *service.BookService) model.Book {
	t.Helper()
	price := 30.0
	created, err := svc.CreateBook(context.Background(), model.Book{
		ISBN:   "1234567890",
		Title:  "T",
		Author: "A",
		Price:  &price,
	})
	require.NoError(t, err)
	return created
}

func TestCreateBook(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)

	created := insertBook(t, svc)
	require.NotZero(t, created.ID)
	require.Equal(t, 0, created.Version)
	require.Nil(t, created.BorrowTime)
	require.True(t, created.Available())

	found, err := svc.GetBook(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, found)
}

// Lending timestamps supplied on create are discarded by the store: a
// fresh record is Available at version 0 no matter what the caller sent.
func TestCreateBookIgnoresLendingFields(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)

	borrowed := model.Now()
	created, err := svc.CreateBook(context.Background(), model.Book{
		ISBN:       "1234567890",
		Title:      "T",
		Author:     "A",
		BorrowTime: &borrowed,
		Version:    7,
	})
	require.NoError(t, err)
	require.Equal(t, 0, created.Version)
	require.Nil(t, created.BorrowTime)
	require.Nil(t, created.ReturnTime)
	require.True(t, created.Available())

	found, err := svc.GetBook(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found.Available())
	require.Nil(t, found.BorrowTime)
}

func TestBorrowReturnScenario(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)
	ctx := context.Background()
	created := insertBook(t, svc)

	borrowed, err := svc.BorrowBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, borrowed.Version)
	require.NotNil(t, borrowed.BorrowTime)
	require.Nil(t, borrowed.ReturnTime)
	require.True(t, borrowed.Borrowed())

	_, err = svc.BorrowBook(ctx, created.ID)
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)

	returned, err := svc.ReturnBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, returned.Version)
	require.NotNil(t, returned.ReturnTime)
	require.Equal(t, borrowed.BorrowTime, returned.BorrowTime)
	require.True(t, returned.Available())

	_, err = svc.ReturnBook(ctx, created.ID)
	require.ErrorIs(t, err, errs.ErrNotBorrowed)
}

func TestReturnNeverBorrowed(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)

	created := insertBook(t, svc)
	_, err := svc.ReturnBook(context.Background(), created.ID)
	require.ErrorIs(t, err, errs.ErrNotBorrowed)
}

func TestBorrowNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)

	_, err := svc.BorrowBook(context.Background(), 42)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

// Re-borrowing after a return is legal and produces a fresh borrow time
// with the return time cleared; the version grows by one per transition.
func TestBorrowReturnBorrowVersions(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)
	ctx := context.Background()
	created := insertBook(t, svc)
	require.Equal(t, 0, created.Version)

	first, err := svc.BorrowBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)

	returned, err := svc.ReturnBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, returned.Version)

	second, err := svc.BorrowBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 3, second.Version)
	require.Nil(t, second.ReturnTime)
	require.True(t, second.Borrowed())
}

// A writer carrying a stale version must see zero rows affected, which the
// service reports as a concurrent modification.
func TestStaleVersionLosesRace(t *testing.T) {
	t.Parallel()
	svc, repo := newBookService(t)
	ctx := context.Background()
	created := insertBook(t, svc)

	stale := created.WithBorrowTime(model.Now())

	winner, err := svc.BorrowBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, winner.Version)

	affected, err := repo.Borrow(ctx, stale)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestConcurrentBorrowSingleWinner(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)
	ctx := context.Background()
	created := insertBook(t, svc)

	const attempts = 32
	var (
		mu       sync.Mutex
		won      int
		conflict int
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := svc.BorrowBook(gctx, created.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, errs.ErrConcurrentModification),
				errors.Is(err, errs.ErrAlreadyBorrowed):
				conflict++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 1, won)
	require.Equal(t, attempts-1, conflict)

	book, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, book.Version)
	require.True(t, book.Borrowed())
}

func TestUpdateBook(t *testing.T) {
	t.Parallel()
	svc, _ := newBookService(t)
	ctx := context.Background()
	created := insertBook(t, svc)

	edit := created
	edit.Title = "T2"
	updated, err := svc.UpdateBook(ctx, edit)
	require.NoError(t, err)
	require.Equal(t, "T2", updated.Title)
	require.Equal(t, 1, updated.Version)
	require.Equal(t, created.CreatedDate, updated.CreatedDate)

	_, err = svc.UpdateBook(ctx, model.Book{ID: 42})
	require.ErrorIs(t, err, errs.ErrNotFound)
}
