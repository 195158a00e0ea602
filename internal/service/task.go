package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/internal/repository"
)

type TaskService struct {
	log  *zap.Logger
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository, log *zap.Logger) *TaskService {
	return &TaskService{
		log:  log,
		repo: repo,
	}
}

func (s *TaskService) ListTasks(ctx context.Context, tenantID string, page, size int) (model.ListTasks, error) {
	return s.repo.List(ctx, tenantID, page, size)
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	return s.repo.Insert(ctx, task)
}

func (s *TaskService) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	return s.repo.Update(ctx, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
