package handler

import (
	"encoding/json"
	"net/http"

	. "github.com/onsi/gomega"

	"devdash/internal/core/model/response"
	"devdash/internal/core/model/transfer"
)

func (s *HandlerSuite) TestExportTasks() {
	s.createTask(map[string]any{"Text": "Export me", "Tags": []string{"work"}})

	rr := s.do(http.MethodGet, "/api/tasks/export", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Disposition")).To(MatchRegexp(`^attachment; filename="devdash-tasks-\d{4}-\d{2}-\d{2}\.json"$`))

	doc := decode[transfer.Document](rr)

	Expect(doc.Version).To(Equal(transfer.Version))
	Expect(doc.Tasks).To(HaveLen(1))
	Expect(doc.Tasks[0].Text).To(Equal("Export me"))
}

func (s *HandlerSuite) TestImportTasks_RoundTrip() {
	s.createTask(map[string]any{"Text": "one"})
	s.createTask(map[string]any{"Text": "two"})

	exported := s.do(http.MethodGet, "/api/tasks/export", nil).Body.String()

	rr := s.do(http.MethodPost, "/api/tasks/import?mode=replace", exported)

	Expect(rr.Code).To(Equal(http.StatusOK))

	body := decode[envelope[transfer.Result]](rr)

	Expect(body.Data.Imported).To(Equal(2))
	Expect(body.Message).To(Equal("Imported 2 tasks"))

	page := decode[response.TaskPage](s.do(http.MethodGet, "/api/tasks", nil))

	Expect(page.Total).To(Equal(2))
}

func (s *HandlerSuite) TestImportTasks_Partial() {
	data, _ := json.Marshal([]map[string]any{
		{"text": "keep"},
		{"text": " "},
	})

	rr := s.do(http.MethodPost, "/api/tasks/import", string(data))

	Expect(rr.Code).To(Equal(http.StatusOK))

	body := decode[envelope[transfer.Result]](rr)

	Expect(body.Data.Imported).To(Equal(1))
	Expect(body.Data.Skipped).To(Equal(1))
	Expect(body.Data.Errors).To(HaveLen(1))
	Expect(body.Message).To(Equal("Imported 1 tasks, skipped 1"))
}

func (s *HandlerSuite) TestImportTasks_InvalidDocument() {
	rr := s.do(http.MethodPost, "/api/tasks/import", `{"tasks": [{"completed": true}]}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	body := decode[response.ErrorResponse](rr)

	Expect(body.Error.Code).To(Equal("BAD_REQUEST"))
	Expect(body.Error.Errors).NotTo(BeEmpty())

	rr = s.do(http.MethodPost, "/api/tasks/import", `not json`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("document"))
}

func (s *HandlerSuite) TestImportTasks_InvalidMode() {
	rr := s.do(http.MethodPost, "/api/tasks/import?mode=upsert", `[]`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("mode"))
}
