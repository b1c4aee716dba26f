package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	MessageEnterCity          = "Enter a city name to see the weather..."
	MessageLoading            = "Loading weather data..."
	MessageWeatherUnavailable = "Weather data unavailable. Please check the city name and try again."
)

type WeatherReport struct {
	City        string    `json:"city"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	FetchedAt   time.Time `json:"fetched_at"`
}

func (w WeatherReport) IconURL() string {
	if w.Icon == "" {
		return ""
	}

	return fmt.Sprintf("http://openweathermap.org/img/wn/%s@2x.png", w.Icon)
}

// RoundedTemperature is the temperature as the widget displays it.
func (w WeatherReport) RoundedTemperature() int {
	return int(math.Round(w.Temperature))
}

type PanelState string

const (
	PanelIdle    PanelState = "idle"
	PanelLoading PanelState = "loading"
	PanelReady   PanelState = "ready"
	PanelFailed  PanelState = "failed"
)

// WeatherPanel is what the weather widget shows at a point in time.
type WeatherPanel struct {
	State   PanelState
	City    string
	Message string
	Report  *WeatherReport
}

func IdlePanel() WeatherPanel {
	return WeatherPanel{State: PanelIdle, Message: MessageEnterCity}
}

func LoadingPanel(city string) WeatherPanel {
	return WeatherPanel{State: PanelLoading, City: city, Message: MessageLoading}
}

func ReadyPanel(city string, report WeatherReport) WeatherPanel {
	return WeatherPanel{State: PanelReady, City: city, Report: &report}
}

func FailedPanel(city string) WeatherPanel {
	return WeatherPanel{State: PanelFailed, City: city, Message: MessageWeatherUnavailable}
}
