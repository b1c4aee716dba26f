package handler

import (
	"errors"
	"net/http"

	. "github.com/onsi/gomega"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

func (s *HandlerSuite) TestDashboard_Empty() {
	rr := s.do(http.MethodGet, "/", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("text/html"))

	html := rr.Body.String()

	Expect(html).To(ContainSubstring(response.EmptyTaskListMessage))
	Expect(html).To(ContainSubstring("<h3>London</h3>"))
	Expect(html).To(ContainSubstring("Temperature: 12°C"))
	Expect(html).To(ContainSubstring(`<span id="year">2026</span>`))
}

func (s *HandlerSuite) TestDashboard_Tasks() {
	s.createTask(map[string]any{"Text": "<b>escaped</b>", "Completed": true})
	s.createTask(map[string]any{"Text": "plain"})

	html := s.do(http.MethodGet, "/", nil).Body.String()

	Expect(html).To(ContainSubstring("&lt;b&gt;escaped&lt;/b&gt;"))
	Expect(html).To(ContainSubstring(`class="completed"`))
	Expect(html).NotTo(ContainSubstring(response.EmptyTaskListMessage))
}

func (s *HandlerSuite) TestDashboard_WeatherFailure() {
	s.Provider.fail(errors.New("offline"))

	html := s.do(http.MethodGet, "/", nil).Body.String()

	Expect(html).To(ContainSubstring(domain.MessageWeatherUnavailable))
	Expect(html).To(ContainSubstring(`data-state="failed"`))
}
