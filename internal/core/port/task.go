package port

import (
	"context"
	"time"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/model/transfer"
)

type TaskRepository interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	GetByUUID(ctx context.Context, uuid string) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	UpdateByUUID(ctx context.Context, task domain.Task) (domain.Task, error)
	DeleteByUUID(ctx context.Context, uuid string) error
	DeleteAll(ctx context.Context) (int, error)
	// CreateMany inserts tasks in one transaction, clearing the list first when replace is set.
	CreateMany(ctx context.Context, tasks []domain.Task, replace bool) ([]domain.Task, error)
}

type TaskService interface {
	Add(ctx context.Context, req request.TaskRequest) (domain.Task, error)
	Get(ctx context.Context, uuid string) (domain.Task, error)
	Edit(ctx context.Context, uuid string, req request.TaskPatchRequest) (domain.Task, error)
	Toggle(ctx context.Context, uuid string) (domain.Task, error)
	Delete(ctx context.Context, uuid string) error
	ClearAll(ctx context.Context) (int, error)
	List(ctx context.Context, query request.ListQuery) (*response.TaskPage, error)
	Stats(ctx context.Context) (response.TaskStats, error)
	Tags(ctx context.Context) ([]response.TagCount, error)
	Now() time.Time
}

type TransferService interface {
	Export(ctx context.Context) (transfer.Document, error)
	Import(ctx context.Context, data []byte, mode transfer.Mode) (transfer.Result, error)
}
