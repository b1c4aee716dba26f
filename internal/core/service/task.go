package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/port"
	"devdash/internal/core/search"
	"devdash/internal/core/telemetry"
	"devdash/internal/core/util"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type TaskService struct {
	repo         port.TaskRepository
	validator    port.Validator
	metrics      *telemetry.AppMetrics
	cursorSecret string
	now          func() time.Time
}

type TaskOption func(*TaskService)

func WithTaskMetrics(metrics *telemetry.AppMetrics) TaskOption {
	return func(ts *TaskService) { ts.metrics = metrics }
}

func WithCursorSecret(secret string) TaskOption {
	return func(ts *TaskService) { ts.cursorSecret = secret }
}

func WithClock(now func() time.Time) TaskOption {
	return func(ts *TaskService) { ts.now = now }
}

func NewTaskService(repo port.TaskRepository, validator port.Validator, opts ...TaskOption) *TaskService {
	ts := &TaskService{
		repo:      repo,
		validator: validator,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts
}

// Now is the service clock, used for overdue checks.
func (ts *TaskService) Now() time.Time {
	return ts.now()
}

func (ts *TaskService) Add(ctx context.Context, req request.TaskRequest) (domain.Task, error) {
	text := domain.NormalizeText(req.Text)

	if text == "" {
		return domain.Task{}, domain.ErrEmptyText
	}

	dueDate, err := domain.ParseDueDate(req.DueDate)

	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
	}

	now := ts.now()

	task := domain.Task{
		UUID:        uuid.New(),
		Text:        text,
		Description: strings.TrimSpace(req.Description),
		Priority:    domain.Priority(req.Priority),
		DueDate:     dueDate,
		Tags:        domain.NormalizeTags(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ts.validate(task); err != nil {
		return domain.Task{}, err
	}

	saved, err := ts.repo.Create(ctx, task)

	if err != nil {
		slog.Error("Repository create failed", "error", err, "text", task.Text)
		return domain.Task{}, err
	}

	ts.metrics.RecordTaskOperation(ctx, "add")

	return saved, nil
}

func (ts *TaskService) Get(ctx context.Context, uid string) (domain.Task, error) {
	return ts.repo.GetByUUID(ctx, uid)
}

// Edit applies a partial update. Text that is blank after trimming keeps
// the current text, the way an abandoned inline edit reverts.
func (ts *TaskService) Edit(ctx context.Context, uid string, req request.TaskPatchRequest) (domain.Task, error) {
	task, err := ts.repo.GetByUUID(ctx, uid)

	if err != nil {
		return domain.Task{}, err
	}

	if req.Text != nil {
		if text := domain.NormalizeText(*req.Text); text != "" {
			task.Text = text
		}
	}

	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}

	if req.Priority != nil {
		task.Priority = domain.Priority(*req.Priority)
	}

	if req.DueDate != nil {
		dueDate, err := domain.ParseDueDate(*req.DueDate)

		if err != nil {
			return domain.Task{}, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
		}

		task.DueDate = dueDate
	}

	if req.Tags != nil {
		task.Tags = domain.NormalizeTags(*req.Tags)
	}

	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	task.UpdatedAt = ts.now()

	if err := ts.validate(task); err != nil {
		return domain.Task{}, err
	}

	updated, err := ts.repo.UpdateByUUID(ctx, task)

	if err != nil {
		return domain.Task{}, err
	}

	ts.metrics.RecordTaskOperation(ctx, "edit")

	return updated, nil
}

func (ts *TaskService) Toggle(ctx context.Context, uid string) (domain.Task, error) {
	task, err := ts.repo.GetByUUID(ctx, uid)

	if err != nil {
		return domain.Task{}, err
	}

	task.Completed = !task.Completed
	task.UpdatedAt = ts.now()

	updated, err := ts.repo.UpdateByUUID(ctx, task)

	if err != nil {
		return domain.Task{}, err
	}

	ts.metrics.RecordTaskOperation(ctx, "toggle")

	return updated, nil
}

func (ts *TaskService) Delete(ctx context.Context, uid string) error {
	if err := ts.repo.DeleteByUUID(ctx, uid); err != nil {
		return err
	}

	ts.metrics.RecordTaskOperation(ctx, "delete")

	return nil
}

func (ts *TaskService) ClearAll(ctx context.Context) (int, error) {
	count, err := ts.repo.DeleteAll(ctx)

	if err != nil {
		return 0, err
	}

	ts.metrics.RecordTaskOperation(ctx, "clear")

	return count, nil
}

func (ts *TaskService) List(ctx context.Context, query request.ListQuery) (*response.TaskPage, error) {
	page := &response.TaskPage{Data: make([]response.TaskResponse, 0)}

	tasks, err := ts.repo.GetAll(ctx)

	if err != nil {
		return page, err
	}

	if len(tasks) == 0 {
		page.EmptyMessage = response.EmptyTaskListMessage
	}

	now := ts.now()

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	fingerprint := util.QueryFingerprint(
		string(query.Filter),
		domain.NormalizeTag(query.Tag),
		search.Normalize(query.Search),
		string(query.Sort),
		fmt.Sprint(query.Desc),
	)

	offset := 0

	if query.Cursor != "" {
		cursor, err := util.DecodeCursor(ts.cursorSecret, query.Cursor)

		if err != nil {
			return page, err
		}

		if cursor.Query != fingerprint {
			return page, fmt.Errorf("%w: query changed", domain.ErrInvalidCursor)
		}

		offset = cursor.Offset
	}

	matches := filterTasks(tasks, query, now)
	sortTasks(matches, query.Sort, query.Desc)

	page.Total = len(matches)

	if offset > len(matches) {
		offset = len(matches)
	}

	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}

	for _, m := range matches[offset:end] {
		page.Data = append(page.Data, response.NewTaskResponse(m.task, now))
	}

	page.Size = len(page.Data)

	if end < len(matches) {
		page.Pagination.HasNext = true
		page.Pagination.NextCursor = util.EncodeCursor(ts.cursorSecret, end, fingerprint)
	}

	return page, nil
}

func (ts *TaskService) Stats(ctx context.Context) (response.TaskStats, error) {
	var stats response.TaskStats

	tasks, err := ts.repo.GetAll(ctx)

	if err != nil {
		return stats, err
	}

	now := ts.now()

	for _, task := range tasks {
		stats.Total++

		if task.Completed {
			stats.Completed++
		} else {
			stats.Active++
		}

		if task.Overdue(now) {
			stats.Overdue++
		}
	}

	return stats, nil
}

func (ts *TaskService) Tags(ctx context.Context) ([]response.TagCount, error) {
	tasks, err := ts.repo.GetAll(ctx)

	if err != nil {
		return nil, err
	}

	counts := make(map[string]*response.TagCount)

	for _, task := range tasks {
		for _, tag := range task.Tags {
			count, ok := counts[tag]

			if !ok {
				count = &response.TagCount{Tag: tag}
				counts[tag] = count
			}

			count.Total++

			if task.Completed {
				count.Completed++
			}
		}
	}

	out := make([]response.TagCount, 0, len(counts))

	for _, count := range counts {
		out = append(out, *count)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })

	return out, nil
}

func (ts *TaskService) validate(task domain.Task) error {
	if ts.validator == nil {
		return nil
	}

	return ts.validator.ValidateStruct(task)
}

type scoredTask struct {
	task  domain.Task
	score int
}

func filterTasks(tasks []domain.Task, query request.ListQuery, now time.Time) []scoredTask {
	matcher := search.NewMatcher(query.Search)
	tag := domain.NormalizeTag(query.Tag)

	out := make([]scoredTask, 0, len(tasks))

	for _, task := range tasks {
		switch query.Filter {
		case request.FilterActive:
			if task.Completed {
				continue
			}
		case request.FilterCompleted:
			if !task.Completed {
				continue
			}
		case request.FilterOverdue:
			if !task.Overdue(now) {
				continue
			}
		}

		if tag != "" && !task.HasTag(tag) {
			continue
		}

		score, ok := matcher.Score(task)

		if !ok {
			continue
		}

		out = append(out, scoredTask{task: task, score: score})
	}

	return out
}

// sortTasks orders in place. Missing priorities and due dates stay last
// regardless of direction; ties keep list order.
func sortTasks(tasks []scoredTask, by request.Sort, desc bool) {
	cmp := func(a, b scoredTask) int {
		switch by {
		case request.SortAlpha:
			return strings.Compare(strings.ToLower(a.task.Text), strings.ToLower(b.task.Text))
		case request.SortCreated:
			return a.task.CreatedAt.Compare(b.task.CreatedAt)
		case request.SortRelevance:
			return a.score - b.score
		default:
			return a.task.Position - b.task.Position
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		switch by {
		case request.SortPriority:
			if missing, ok := missingLast(a.task.Priority == domain.PriorityUnset, b.task.Priority == domain.PriorityUnset); ok {
				return missing
			}
			if a.task.Priority == b.task.Priority {
				return false
			}
			if desc {
				return a.task.Priority > b.task.Priority
			}
			return a.task.Priority < b.task.Priority
		case request.SortDue:
			if missing, ok := missingLast(a.task.DueDate == nil, b.task.DueDate == nil); ok {
				return missing
			}
			if a.task.DueDate.Equal(*b.task.DueDate) {
				return false
			}
			if desc {
				return a.task.DueDate.After(*b.task.DueDate)
			}
			return a.task.DueDate.Before(*b.task.DueDate)
		}

		c := cmp(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// missingLast decides ordering when either side lacks the sort key.
func missingLast(aMissing, bMissing bool) (bool, bool) {
	switch {
	case aMissing && bMissing:
		return false, true
	case aMissing:
		return false, true
	case bMissing:
		return true, true
	default:
		return false, false
	}
}
