package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"devdash/internal/adapter/database"
	"devdash/internal/core/domain"
	"devdash/internal/core/port"
	"devdash/pkg/tracing"
)

const tasksTable = "tasks"

var taskColumns = []string{
	"id", "uuid", "text", "description", "completed", "priority",
	"due_date", "tags", "position", "created_at", "updated_at", "deleted_at",
}

var nextPosition = sq.Expr("(SELECT COALESCE(MAX(position), 0) + 1 FROM tasks)")

type TaskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (tr *TaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	ctx, span := tr.span(ctx, "GetAll", "SELECT")
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From(tasksTable).
		Where("deleted_at IS NULL").
		OrderBy("position ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	defer rows.Close()

	tasks := make([]domain.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			tracing.AddSpanError(span, err)
			return nil, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(tasks)))

	return tasks, nil
}

func (tr *TaskRepository) GetByUUID(ctx context.Context, uid string) (domain.Task, error) {
	ctx, span := tr.span(ctx, "GetByUUID", "SELECT")
	defer span.End()

	if _, err := uuid.Parse(uid); err != nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From(tasksTable).
		Where(sq.Eq{"uuid": uid}).
		Where("deleted_at IS NULL").
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error getting task by uuid", "error", err)
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.span(ctx, "Create", "INSERT")
	defer span.End()

	saved, err := tr.insert(ctx, tr.db, task)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Insert failed", "error", err, "uuid", task.UUID)
		return domain.Task{}, err
	}

	return saved, nil
}

func (tr *TaskRepository) UpdateByUUID(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.span(ctx, "UpdateByUUID", "UPDATE")
	defer span.End()

	tags, err := encodeTags(task.Tags)

	if err != nil {
		return domain.Task{}, err
	}

	query, args, err := tr.db.QueryBuilder.Update(tasksTable).
		SetMap(map[string]interface{}{
			"text":        task.Text,
			"description": task.Description,
			"completed":   task.Completed,
			"priority":    int(task.Priority),
			"due_date":    dueDateValue(task.DueDate),
			"tags":        tags,
			"updated_at":  task.UpdatedAt.UTC(),
		}).
		Where(sq.Eq{"uuid": task.UUID.String()}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Task{}, err
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	return tr.GetByUUID(ctx, task.UUID.String())
}

func (tr *TaskRepository) DeleteByUUID(ctx context.Context, uid string) error {
	ctx, span := tr.span(ctx, "DeleteByUUID", "UPDATE")
	defer span.End()

	query, args, err := tr.db.QueryBuilder.Update(tasksTable).
		Set("deleted_at", time.Now().UTC()).
		Where(sq.Eq{"uuid": uid}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return err
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (tr *TaskRepository) DeleteAll(ctx context.Context) (int, error) {
	ctx, span := tr.span(ctx, "DeleteAll", "UPDATE")
	defer span.End()

	count, err := tr.deleteAll(ctx, tr.db)

	if err != nil {
		tracing.AddSpanError(span, err)
	}

	return count, err
}

func (tr *TaskRepository) CreateMany(ctx context.Context, tasks []domain.Task, replace bool) ([]domain.Task, error) {
	ctx, span := tr.span(ctx, "CreateMany", "INSERT")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.batch_size", len(tasks)),
		attribute.Bool("db.replace", replace),
	)

	tx, err := tr.db.BeginTx(ctx, nil)

	if err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	defer tx.Rollback()

	if replace {
		if _, err := tr.deleteAll(ctx, tx); err != nil {
			tracing.AddSpanError(span, err)
			return nil, err
		}
	}

	saved := make([]domain.Task, 0, len(tasks))

	for _, task := range tasks {
		created, err := tr.insert(ctx, tx, task)

		if err != nil {
			tracing.AddSpanError(span, err)
			return nil, fmt.Errorf("insert %q: %w", task.Text, err)
		}

		saved = append(saved, created)
	}

	if err := tx.Commit(); err != nil {
		tracing.AddSpanError(span, err)
		return nil, err
	}

	return saved, nil
}

func (tr *TaskRepository) insert(ctx context.Context, db execQuerier, task domain.Task) (domain.Task, error) {
	tags, err := encodeTags(task.Tags)

	if err != nil {
		return domain.Task{}, err
	}

	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	query, args, err := tr.db.QueryBuilder.Insert(tasksTable).
		Columns("uuid", "text", "description", "completed", "priority", "due_date", "tags", "position", "created_at", "updated_at").
		Values(task.UUID.String(), task.Text, task.Description, task.Completed, int(task.Priority),
			dueDateValue(task.DueDate), tags, nextPosition, task.CreatedAt, task.UpdatedAt).
		Suffix("RETURNING id, position").
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	if err := db.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.Position); err != nil {
		return domain.Task{}, err
	}

	if task.Tags == nil {
		task.Tags = []string{}
	}

	return task, nil
}

func (tr *TaskRepository) deleteAll(ctx context.Context, db execQuerier) (int, error) {
	query, args, err := tr.db.QueryBuilder.Update(tasksTable).
		Set("deleted_at", time.Now().UTC()).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()

	return int(rowsAffected), err
}

func (tr *TaskRepository) span(ctx context.Context, operation, statement string) (context.Context, trace.Span) {
	return tracing.CreateChildSpan(ctx, "db.tasks."+operation, []attribute.KeyValue{
		attribute.String("db.system", tr.db.Driver),
		attribute.String("db.table", tasksTable),
		attribute.String("db.operation", statement),
	})
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		task      domain.Task
		uid       string
		dueDate   sql.NullString
		tags      string
		priority  int
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&task.ID, &uid, &task.Text, &task.Description, &task.Completed, &priority,
		&dueDate, &tags, &task.Position, &task.CreatedAt, &task.UpdatedAt, &deletedAt,
	)

	if err != nil {
		return domain.Task{}, err
	}

	if task.UUID, err = uuid.Parse(uid); err != nil {
		return domain.Task{}, fmt.Errorf("task %d: %w", task.ID, err)
	}

	task.Priority = domain.Priority(priority)

	if dueDate.Valid && dueDate.String != "" {
		if task.DueDate, err = domain.ParseDueDate(dueDate.String); err != nil {
			slog.Warn("Ignoring malformed due date", "task", uid, "value", dueDate.String)
			task.DueDate = nil
		}
	}

	task.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &task.Tags); err != nil {
			slog.Warn("Ignoring malformed tags", "task", uid, "value", tags)
			task.Tags = []string{}
		}
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		task.DeletedAt = &t
	}

	return task, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}

	data, err := json.Marshal(tags)

	return string(data), err
}

func dueDateValue(due *time.Time) interface{} {
	if due == nil {
		return nil
	}

	return due.Format(domain.DateLayout)
}
