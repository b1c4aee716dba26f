package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/gomega"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

func (s *HandlerSuite) TestGetWeather() {
	rr := s.do(http.MethodGet, "/api/weather?city=%20Lima%20", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))

	body := decode[envelope[response.WeatherResponse]](rr)

	Expect(body.Data.City).To(Equal("Lima"))
	Expect(body.Data.Temperature).To(Equal(22))
	Expect(body.Data.IconURL).To(Equal("http://openweathermap.org/img/wn/01d@2x.png"))
}

func (s *HandlerSuite) TestGetWeather_Errors() {
	rr := s.do(http.MethodGet, "/api/weather?city=", nil)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("city"))

	rr = s.do(http.MethodGet, "/api/weather?city=Atlantis", nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Message).To(Equal(domain.MessageWeatherUnavailable))

	s.Provider.fail(errors.New("boom"))

	rr = s.do(http.MethodGet, "/api/weather?city=London", nil)

	Expect(rr.Code).To(Equal(http.StatusBadGateway))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("UPSTREAM_ERROR"))
}

func (s *HandlerSuite) createSession() string {
	rr := s.do(http.MethodPost, "/api/weather/sessions", nil)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	body := decode[envelope[response.WeatherPanelResponse]](rr)

	Expect(body.Data.State).To(Equal(string(domain.PanelIdle)))
	Expect(body.Data.Message).To(Equal(domain.MessageEnterCity))

	return body.Data.SessionID
}

func (s *HandlerSuite) TestWeatherSession_Input() {
	id := s.createSession()

	rr := s.do(http.MethodPut, "/api/weather/sessions/"+id+"/input", map[string]string{"city": "London"})

	Expect(rr.Code).To(Equal(http.StatusAccepted))

	Eventually(func() string {
		rr := s.do(http.MethodGet, "/api/weather/sessions/"+id, nil)
		return decode[envelope[response.WeatherPanelResponse]](rr).Data.State
	}).Should(Equal(string(domain.PanelReady)))

	body := decode[envelope[response.WeatherPanelResponse]](s.do(http.MethodGet, "/api/weather/sessions/"+id, nil))

	Expect(body.Data.Weather.City).To(Equal("London"))
	Expect(body.Data.Weather.Temperature).To(Equal(12))
}

func (s *HandlerSuite) TestWeatherSession_LongPoll() {
	id := s.createSession()

	s.do(http.MethodPut, "/api/weather/sessions/"+id+"/input", map[string]string{"city": "Lima"})

	rr := s.do(http.MethodGet, "/api/weather/sessions/"+id+"?wait=2s&version=0", nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[envelope[response.WeatherPanelResponse]](rr).Data.Version).To(BeNumerically(">", 0))

	var ready response.WeatherPanelResponse

	Eventually(func() string {
		ready = decode[envelope[response.WeatherPanelResponse]](s.do(http.MethodGet, "/api/weather/sessions/"+id, nil)).Data
		return ready.State
	}).Should(Equal(string(domain.PanelReady)))

	// waiting on the current version runs out instead of returning a stale signal
	start := time.Now()
	rr = s.do(http.MethodGet, fmt.Sprintf("/api/weather/sessions/%s?wait=100ms&version=%d", id, ready.Version), nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(time.Since(start)).To(BeNumerically(">=", 100*time.Millisecond))
	Expect(decode[envelope[response.WeatherPanelResponse]](rr).Data.Version).To(Equal(ready.Version))

	rr = s.do(http.MethodGet, "/api/weather/sessions/"+id+"?wait=soon", nil)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	rr = s.do(http.MethodGet, "/api/weather/sessions/"+id+"?wait=1s&version=latest", nil)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("version"))
}

func (s *HandlerSuite) TestWeatherSession_Search() {
	id := s.createSession()

	rr := s.do(http.MethodPost, "/api/weather/sessions/"+id+"/search", map[string]string{"city": "Atlantis"})

	Expect(rr.Code).To(Equal(http.StatusOK))

	body := decode[envelope[response.WeatherPanelResponse]](rr)

	Expect(body.Data.State).To(Equal(string(domain.PanelFailed)))
	Expect(body.Data.Message).To(Equal(domain.MessageWeatherUnavailable))

	rr = s.do(http.MethodPost, "/api/weather/sessions/"+id+"/search", map[string]string{"city": "Lima"})

	Expect(decode[envelope[response.WeatherPanelResponse]](rr).Data.Weather.City).To(Equal("Lima"))
}

func (s *HandlerSuite) TestWeatherSession_NotFound() {
	rr := s.do(http.MethodGet, "/api/weather/sessions/missing", nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))

	id := s.createSession()

	rr = s.do(http.MethodDelete, "/api/weather/sessions/"+id, nil)

	Expect(rr.Code).To(Equal(http.StatusOK))

	rr = s.do(http.MethodPut, "/api/weather/sessions/"+id+"/input", map[string]string{"city": "Lima"})

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *HandlerSuite) TestWeatherSession_CreateRejectsInvalidBody() {
	rr := s.do(http.MethodPost, "/api/weather/sessions", map[string]string{"city": strings.Repeat("x", 101)})

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(s.Lookups.Len()).To(BeZero())

	rr = s.do(http.MethodPost, "/api/weather/sessions", "{broken")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Errors[0].Field).To(Equal("request"))
	Expect(s.Lookups.Len()).To(BeZero())
}
