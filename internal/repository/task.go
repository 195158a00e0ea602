package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	"github.com/walterfan/reminder-service/internal/model"
)

type TaskRepository interface {
	List(ctx context.Context, tenantID string, page, size int) (model.ListTasks, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Task, error)
	Insert(ctx context.Context, task model.Task) (model.Task, error)
	Update(ctx context.Context, task model.Task) (model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewTaskRepository(db *sqlx.DB, log *zap.Logger) (*taskRepository, error) {
	return &taskRepository{
		db:  db,
		log: log.Named("task-repo"),
	}, nil
}

var taskColumns = []string{
	"task_id", "name", "description", "tags",
	"start_time", "end_time", "deadline", "tenant_id",
	"created_date", "last_modified_date",
}

func (r *taskRepository) List(ctx context.Context, tenantID string, page, size int) (model.ListTasks, error) {
	q := qb.Select(taskColumns...).
		From(taskTableName).
		OrderBy("created_date", "task_id")

	if tenantID != "" {
		q = q.Where(sq.Eq{"tenant_id": tenantID})
	}
	// both must be positive or the offset arithmetic is meaningless
	if page > 0 && size > 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListTasks{}, err
	}
	r.log.Debug("List", zap.String("query", query), zap.Any("args", args))

	tasks := make([]model.Task, 0)
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return model.ListTasks{}, wrapStoreErr(err)
	}

	return model.ListTasks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(tasks),
		},
		Items: tasks,
	}, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	query, args, err := qb.Select(taskColumns...).
		From(taskTableName).
		Where(sq.Eq{"task_id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Task{}, err
	}

	var task model.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, errs.ErrNotFound
		}
		return model.Task{}, wrapStoreErr(err)
	}
	return task, nil
}

func (r *taskRepository) Insert(ctx context.Context, task model.Task) (model.Task, error) {
	query, args, err := qb.Insert(taskTableName).
		Columns("task_id", "name", "description", "tags",
			"start_time", "end_time", "deadline", "tenant_id",
			"created_date", "last_modified_date").
		Values(uuid.New(), task.Name, task.Description, task.Tags,
			task.StartTime, task.EndTime, task.Deadline, task.TenantID,
			sq.Expr("now()"), sq.Expr("now()")).
		Suffix("returning " + joinColumns(taskColumns)).
		ToSql()
	if err != nil {
		return model.Task{}, err
	}

	var created model.Task
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("Insert", zap.String("q", query), zap.Any("args", args))
		return model.Task{}, wrapStoreErr(err)
	}
	return created, nil
}

func (r *taskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	query, args, err := qb.Update(taskTableName).
		Set("name", task.Name).
		Set("description", task.Description).
		Set("tags", task.Tags).
		Set("start_time", task.StartTime).
		Set("end_time", task.EndTime).
		Set("deadline", task.Deadline).
		Set("tenant_id", task.TenantID).
		Set("last_modified_date", sq.Expr("now()")).
		Where(sq.Eq{"task_id": task.TaskID}).
		Suffix("returning " + joinColumns(taskColumns)).
		ToSql()
	if err != nil {
		return model.Task{}, err
	}

	var updated model.Task
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, errs.ErrNotFound
		}
		return model.Task{}, wrapStoreErr(err)
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(taskTableName).
		Where(sq.Eq{"task_id": id}).
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
