package handler

import (
	"net/http"

	. "github.com/onsi/gomega"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
	factory "devdash/pkg/test/factory"
)

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

func (s *HandlerSuite) createTask(overrides map[string]any) domain.Task {
	task, err := s.TaskRepo.Create(ctx, factory.NewTask(overrides))
	s.Require().NoError(err)
	return task
}

func (s *HandlerSuite) TestCreateTask() {
	rr := s.do(http.MethodPost, "/api/tasks", map[string]any{
		"text":     "  Buy   milk ",
		"priority": 1,
		"due_date": "2026-03-01",
		"tags":     []string{"Home", "home"},
	})

	Expect(rr.Code).To(Equal(http.StatusCreated))

	body := decode[envelope[response.TaskResponse]](rr)

	// surrounding whitespace is trimmed, inner spacing is kept
	Expect(body.Data.Text).To(Equal("Buy   milk"))
	Expect(body.Data.PriorityLabel).To(Equal("high"))
	Expect(*body.Data.DueDate).To(Equal("2026-03-01"))
	Expect(body.Data.Overdue).To(BeTrue())
	Expect(body.Data.Tags).To(Equal([]string{"home"}))
}

func (s *HandlerSuite) TestCreateTask_EmptyText() {
	rr := s.do(http.MethodPost, "/api/tasks", map[string]any{"text": "   "})

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ErrorResponse](rr)

	Expect(body.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(body.Error.Errors[0].Field).To(Equal("text"))
	Expect(body.Error.Errors[0].Message).To(Equal("Task text cannot be empty"))
}

func (s *HandlerSuite) TestCreateTask_Validation() {
	rr := s.do(http.MethodPost, "/api/tasks", map[string]any{"text": "ok", "priority": 9})

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("VALIDATION_ERROR"))
}

func (s *HandlerSuite) TestCreateTask_InvalidJSON() {
	rr := s.do(http.MethodPost, "/api/tasks", "{not json")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("request"))
}

func (s *HandlerSuite) TestListTasks() {
	s.createTask(map[string]any{"Text": "first"})
	s.createTask(map[string]any{"Text": "second", "Completed": true})

	rr := s.do(http.MethodGet, "/api/tasks", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))

	page := decode[response.TaskPage](rr)

	Expect(page.Total).To(Equal(2))
	Expect(page.Data[0].Text).To(Equal("first"))
	Expect(page.EmptyMessage).To(BeEmpty())

	rr = s.do(http.MethodGet, "/api/tasks?filter=completed", nil)
	page = decode[response.TaskPage](rr)

	Expect(page.Total).To(Equal(1))
	Expect(page.Data[0].Text).To(Equal("second"))
}

func (s *HandlerSuite) TestListTasks_Empty() {
	rr := s.do(http.MethodGet, "/api/tasks", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TaskPage](rr).EmptyMessage).To(Equal(response.EmptyTaskListMessage))
}

func (s *HandlerSuite) TestListTasks_InvalidQuery() {
	rr := s.do(http.MethodGet, "/api/tasks?filter=someday", nil)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("VALIDATION_ERROR"))

	rr = s.do(http.MethodGet, "/api/tasks?cursor=garbage", nil)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("cursor"))
}

func (s *HandlerSuite) TestListTasks_Pagination() {
	for _, text := range []string{"a", "b", "c"} {
		s.createTask(map[string]any{"Text": text})
	}

	page := decode[response.TaskPage](s.do(http.MethodGet, "/api/tasks?limit=2", nil))

	Expect(page.Size).To(Equal(2))
	Expect(page.Pagination.HasNext).To(BeTrue())

	next := decode[response.TaskPage](s.do(http.MethodGet, "/api/tasks?limit=2&cursor="+page.Pagination.NextCursor, nil))

	Expect(next.Size).To(Equal(1))
	Expect(next.Data[0].Text).To(Equal("c"))
	Expect(next.Pagination.HasNext).To(BeFalse())
}

func (s *HandlerSuite) TestGetTask() {
	task := s.createTask(map[string]any{"Text": "Read"})

	rr := s.do(http.MethodGet, "/api/tasks/"+task.UUID.String(), nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[response.TaskResponse]](rr).Data.UUID).To(Equal(task.UUID))
}

func (s *HandlerSuite) TestGetTask_NotFound() {
	rr := s.do(http.MethodGet, "/api/tasks/not-a-uuid", nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("NOT_FOUND"))
}

func (s *HandlerSuite) TestUpdateTask() {
	task := s.createTask(map[string]any{"Text": "Draft"})

	rr := s.do(http.MethodPatch, "/api/tasks/"+task.UUID.String(), map[string]any{
		"text":        "Final",
		"description": "  notes ",
	})

	Expect(rr.Code).To(Equal(http.StatusOK))

	body := decode[envelope[response.TaskResponse]](rr)

	Expect(body.Data.Text).To(Equal("Final"))
	Expect(body.Data.Description).To(Equal("notes"))
}

func (s *HandlerSuite) TestUpdateTask_BlankTextKeepsCurrent() {
	task := s.createTask(map[string]any{"Text": "Keep me"})

	rr := s.do(http.MethodPatch, "/api/tasks/"+task.UUID.String(), map[string]any{"text": "  "})

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[response.TaskResponse]](rr).Data.Text).To(Equal("Keep me"))
}

func (s *HandlerSuite) TestToggleTask() {
	task := s.createTask(map[string]any{"Text": "Flip"})

	rr := s.do(http.MethodPost, "/api/tasks/"+task.UUID.String()+"/toggle", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[response.TaskResponse]](rr).Data.Completed).To(BeTrue())

	rr = s.do(http.MethodPost, "/api/tasks/"+task.UUID.String()+"/toggle", nil)

	Expect(decode[envelope[response.TaskResponse]](rr).Data.Completed).To(BeFalse())
}

func (s *HandlerSuite) TestDeleteTask() {
	task := s.createTask(map[string]any{"Text": "Gone"})

	rr := s.do(http.MethodDelete, "/api/tasks/"+task.UUID.String(), nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[any]](rr).Message).To(Equal("Task deleted successfully"))

	rr = s.do(http.MethodDelete, "/api/tasks/"+task.UUID.String(), nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *HandlerSuite) TestClearTasks() {
	s.createTask(nil)
	s.createTask(nil)

	rr := s.do(http.MethodDelete, "/api/tasks", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[map[string]int]](rr).Data["deleted"]).To(Equal(2))

	page := decode[response.TaskPage](s.do(http.MethodGet, "/api/tasks", nil))

	Expect(page.Total).To(Equal(0))
}

func (s *HandlerSuite) TestStatsAndTags() {
	s.createTask(map[string]any{"Text": "a", "Tags": []string{"work"}})
	s.createTask(map[string]any{"Text": "b", "Tags": []string{"work", "home"}, "Completed": true})
	s.createTask(map[string]any{"Text": "c", "DueDate": factory.DueIn(-400)})

	stats := decode[envelope[response.TaskStats]](s.do(http.MethodGet, "/api/tasks/stats", nil)).Data

	Expect(stats).To(Equal(response.TaskStats{Total: 3, Active: 2, Completed: 1, Overdue: 1}))

	tags := decode[envelope[[]response.TagCount]](s.do(http.MethodGet, "/api/tasks/tags", nil)).Data

	Expect(tags).To(Equal([]response.TagCount{
		{Tag: "home", Total: 1, Completed: 1},
		{Tag: "work", Total: 2, Completed: 1},
	}))
}
