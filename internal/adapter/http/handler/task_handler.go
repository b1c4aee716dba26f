package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "devdash/internal/adapter/http/helper"
	. "devdash/internal/adapter/http/validation"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/port"
	"devdash/pkg/config"
	. "devdash/pkg/tracing"
)

type TaskHandler struct {
	svc    port.TaskService
	Logger *config.LokiLogger
}

func NewTaskHandler(taskService port.TaskService, logger *config.LokiLogger) *TaskHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TaskHandler{
		svc:    taskService,
		Logger: logger,
	}
}

func (t *TaskHandler) ListTasks(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTasks"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	var query request.ListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	if err := Validator.Struct(query); err != nil {
		SendValidationError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("task.filter", string(query.Filter)),
		attribute.String("task.sort", string(query.Sort)),
		attribute.Int("task.limit", query.Limit),
	)

	page, err := t.svc.List(ctx, query)

	if err != nil {
		AddSpanError(span, err)

		t.Logger.Logger.Ctx(ctx).Warn("Failed to list tasks", zap.Error(err))

		SendTaskError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("response.size", page.Size))

	c.JSON(http.StatusOK, page)
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	params, ok := bindJSON[request.TaskRequest](c)

	if !ok {
		return
	}

	task, err := t.svc.Add(ctx, params)

	if err != nil {
		t.Logger.Logger.Ctx(ctx).Info("Task rejected", zap.Error(err))

		SendTaskError(c, err)
		return
	}

	SendSuccess(c, http.StatusCreated, response.NewTaskResponse(task, t.svc.Now()))
}

func (t *TaskHandler) GetTask(c *gin.Context) {
	task, err := t.svc.Get(c.Request.Context(), c.Param("uuid"))

	if err != nil {
		SendTaskError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task, t.svc.Now()))
}

func (t *TaskHandler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()

	params, ok := bindJSON[request.TaskPatchRequest](c)

	if !ok {
		return
	}

	task, err := t.svc.Edit(ctx, c.Param("uuid"), params)

	if err != nil {
		SendTaskError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task, t.svc.Now()))
}

func (t *TaskHandler) ToggleTask(c *gin.Context) {
	task, err := t.svc.Toggle(c.Request.Context(), c.Param("uuid"))

	if err != nil {
		SendTaskError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task, t.svc.Now()))
}

func (t *TaskHandler) DeleteTask(c *gin.Context) {
	if err := t.svc.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		SendTaskError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Task deleted successfully")
}

func (t *TaskHandler) ClearTasks(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := t.svc.ClearAll(ctx)

	if err != nil {
		t.Logger.ErrorWithTrace(ctx, "Failed to clear tasks", zap.Error(err))

		SendInternalError(c, "Error clearing tasks")
		return
	}

	SendSuccess(c, http.StatusOK, gin.H{"deleted": count}, "All tasks cleared")
}

func (t *TaskHandler) GetStats(c *gin.Context) {
	stats, err := t.svc.Stats(c.Request.Context())

	if err != nil {
		SendInternalError(c, "Error getting stats")
		return
	}

	SendSuccess(c, http.StatusOK, stats)
}

func (t *TaskHandler) GetTags(c *gin.Context) {
	tags, err := t.svc.Tags(c.Request.Context())

	if err != nil {
		SendInternalError(c, "Error getting tags")
		return
	}

	SendSuccess(c, http.StatusOK, tags)
}
