package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/handler"
	service_mocks "github.com/walterfan/reminder-service/internal/handler/mocks"
	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/pkg/validate"
)

func testBook() model.Book {
	price := 30.0
	created := model.NewInstant(time.Date(2024, 5, 5, 9, 34, 38, 963_000_000, time.UTC))
	return model.Book{
		ID:               1,
		ISBN:             "1234567890",
		Title:            "T",
		Author:           "A",
		Price:            &price,
		CreatedDate:      created,
		LastModifiedDate: created,
		Version:          0,
	}
}

func newBookRouter(t *testing.T) (*echo.Echo, *service_mocks.MockBookService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockBookService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, nil, nil, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/books/:id", h.GetBook)
	e.POST("/books", h.CreateBook)
	e.POST("/books/:id/borrow", h.BorrowBook)
	e.POST("/books/:id/return", h.ReturnBook)
	return e, svc
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		id           string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   "1",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(context.Background(), int64(1)).
					Return(testBook(), nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"isbn":"1234567890","title":"T","author":"A","price":30,"borrowTime":null,"returnTime":null,"createdDate":"2024-05-05T09:34:38.963Z","lastModifiedDate":"2024-05-05T09:34:38.963Z","version":0}`,
			},
		},
		{
			name: "err. not found",
			id:   "42",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(context.Background(), int64(42)).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name:         "err. invalid id",
			id:           "abc",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
			},
		},
		{
			name: "err. store unavailable",
			id:   "1",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					GetBook(context.Background(), int64(1)).
					Return(model.Book{}, errors.WithMessage(errs.ErrStoreUnavailable, "dial tcp: connection refused"))
			},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"dial tcp: connection refused: store unavailable"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBookRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodGet, "/books/"+tt.id, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"isbn":"1234567890","title":"T","author":"A","price":30}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(testBook(), nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"isbn":"1234567890","title":"T","author":"A","price":30,"borrowTime":null,"returnTime":null,"createdDate":"2024-05-05T09:34:38.963Z","lastModifiedDate":"2024-05-05T09:34:38.963Z","version":0}`,
			},
		},
		{
			name:         "err. malformed isbn",
			body:         `{"isbn":"978-7-115","title":"T","author":"A"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'Book.ISBN' Error:Field validation for 'ISBN' failed on the 'isbn' tag"}`,
			},
		},
		{
			name:         "err. empty title",
			body:         `{"isbn":"1234567890","author":"A"}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'Book.Title' Error:Field validation for 'Title' failed on the 'required' tag"}`,
			},
		},
		{
			name:         "err. negative price",
			body:         `{"isbn":"1234567890","title":"T","author":"A","price":-1}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'Book.Price' Error:Field validation for 'Price' failed on the 'gt' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBookRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_BorrowReturn(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	borrowedAt := model.NewInstant(time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC))
	borrowedBook := func() model.Book {
		b := testBook().WithBorrowTime(borrowedAt)
		b.Version = 1
		b.LastModifiedDate = borrowedAt
		return b
	}

	var tests = []struct {
		name         string
		path         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "borrow ok",
			path: "/books/1/borrow",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					BorrowBook(context.Background(), int64(1)).
					Return(borrowedBook(), nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"isbn":"1234567890","title":"T","author":"A","price":30,"borrowTime":"2024-05-05T10:00:00.000Z","returnTime":null,"createdDate":"2024-05-05T09:34:38.963Z","lastModifiedDate":"2024-05-05T10:00:00.000Z","version":1}`,
			},
		},
		{
			name: "borrow err. already borrowed",
			path: "/books/1/borrow",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					BorrowBook(context.Background(), int64(1)).
					Return(model.Book{}, errs.ErrAlreadyBorrowed)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is already borrowed"}`,
			},
		},
		{
			name: "borrow err. lost race",
			path: "/books/1/borrow",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					BorrowBook(context.Background(), int64(1)).
					Return(model.Book{}, errs.ErrConcurrentModification)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"concurrent modification detected, no rows were affected"}`,
			},
		},
		{
			name: "borrow err. not found",
			path: "/books/42/borrow",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					BorrowBook(context.Background(), int64(42)).
					Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name: "return err. not borrowed",
			path: "/books/1/return",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ReturnBook(context.Background(), int64(1)).
					Return(model.Book{}, errs.ErrNotBorrowed)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is not borrowed"}`,
			},
		},
		{
			name: "return err. internal",
			path: "/books/1/return",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					ReturnBook(context.Background(), int64(1)).
					Return(model.Book{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newBookRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, tt.path, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	log := zap.NewExample().Named("test")
	h := handler.New(nil, nil, nil, log)

	e := echo.New()
	e.GET("/manage/health", h.Health)

	r := httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
