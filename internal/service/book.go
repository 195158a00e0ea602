package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/internal/repository"
	"github.com/walterfan/reminder-service/pkg/kafka"
)

// BookService drives the lending state machine. Borrow and return follow a
// read-validate-write sequence with no locks held: the only atomicity
// boundary is the repository's version-guarded update. On a lost race the
// operation fails with ErrConcurrentModification and the caller decides
// whether to retry from a fresh read; the service never retries on its own.
type BookService struct {
	log  *zap.Logger
	repo repository.BookRepository
	enq  Enqueuer
}

// NewBookService wires the lending service. enq may be nil, in which case
// lending events are not published.
func NewBookService(repo repository.BookRepository, enq Enqueuer, log *zap.Logger) *BookService {
	return &BookService{
		log:  log,
		repo: repo,
		enq:  enq,
	}
}

func (s *BookService) GetBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.FindAll(ctx)
}

func (s *BookService) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookService) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	return s.repo.Insert(ctx, book)
}

// UpdateBook edits catalog fields. The write carries the version observed
// by the read, so a concurrent transition (or another edit) fails it.
func (s *BookService) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	current, err := s.repo.FindByID(ctx, book.ID)
	if err != nil {
		return model.Book{}, err
	}

	updated := current
	updated.ISBN = book.ISBN
	updated.Title = book.Title
	updated.Author = book.Author
	updated.Price = book.Price

	affected, err := s.repo.Update(ctx, updated)
	if err != nil {
		return model.Book{}, err
	}
	if affected != 1 {
		return model.Book{}, errs.ErrConcurrentModification
	}

	updated.Version++
	updated.LastModifiedDate = model.Now()
	return updated, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *BookService) BorrowBook(ctx context.Context, id int64) (model.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if !book.Available() {
		return model.Book{}, errs.ErrAlreadyBorrowed
	}

	now := model.Now()
	updated := book.WithBorrowTime(now)

	affected, err := s.repo.Borrow(ctx, updated)
	if err != nil {
		return model.Book{}, err
	}
	if affected != 1 {
		return model.Book{}, errs.ErrConcurrentModification
	}

	updated.Version++
	updated.LastModifiedDate = now
	s.publish(model.LendingEvent{
		BookID:  updated.ID,
		Action:  model.LendingBorrowed,
		At:      now,
		Version: updated.Version,
	})
	return updated, nil
}

func (s *BookService) ReturnBook(ctx context.Context, id int64) (model.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if !book.Borrowed() {
		return model.Book{}, errs.ErrNotBorrowed
	}

	now := model.Now()
	updated := book.WithReturnTime(now)

	affected, err := s.repo.Return(ctx, updated)
	if err != nil {
		return model.Book{}, err
	}
	if affected != 1 {
		return model.Book{}, errs.ErrConcurrentModification
	}

	updated.Version++
	updated.LastModifiedDate = now
	s.publish(model.LendingEvent{
		BookID:  updated.ID,
		Action:  model.LendingReturned,
		At:      now,
		Version: updated.Version,
	})
	return updated, nil
}

// publish is fire-and-forget: a broker problem never fails the lending
// operation that already committed.
func (s *BookService) publish(ev model.LendingEvent) {
	if s.enq == nil {
		return
	}
	if err := s.enq.Enqueue(kafka.LendingTopic, ev); err != nil {
		s.log.Warn("enqueue lending event", zap.Int64("bookId", ev.BookID), zap.Error(err))
	}
}
