package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go -package=mocks

type BookService interface {
	GetBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	BorrowBook(ctx context.Context, id int64) (model.Book, error)
	ReturnBook(ctx context.Context, id int64) (model.Book, error)
}

type TaskService interface {
	ListTasks(ctx context.Context, tenantID string, page, size int) (model.ListTasks, error)
	GetTask(ctx context.Context, id uuid.UUID) (model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type TenantService interface {
	ListTenants(ctx context.Context) ([]model.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (model.Tenant, error)
	CreateTenant(ctx context.Context, tenant model.Tenant) (model.Tenant, error)
	DeleteTenant(ctx context.Context, id uuid.UUID) error
}

var (
	_ BookService   = (*service.BookService)(nil)
	_ TaskService   = (*service.TaskService)(nil)
	_ TenantService = (*service.TenantService)(nil)
)
