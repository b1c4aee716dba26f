package response

import (
	"time"

	"github.com/google/uuid"

	"devdash/internal/core/domain"
)

const EmptyTaskListMessage = "No tasks yet — add one above to get started."

type TaskResponse struct {
	UUID          uuid.UUID `json:"uuid"`
	Text          string    `json:"text"`
	Description   string    `json:"description,omitempty"`
	Completed     bool      `json:"completed"`
	Priority      int       `json:"priority,omitempty"`
	PriorityLabel string    `json:"priority_label,omitempty"`
	DueDate       *string   `json:"due_date"`
	Overdue       bool      `json:"overdue"`
	Tags          []string  `json:"tags"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewTaskResponse(task domain.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		UUID:          task.UUID,
		Text:          task.Text,
		Description:   task.Description,
		Completed:     task.Completed,
		Priority:      int(task.Priority),
		PriorityLabel: task.Priority.String(),
		Overdue:       task.Overdue(now),
		Tags:          task.Tags,
		Position:      task.Position,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	if task.DueDate != nil {
		due := task.DueDateString()
		resp.DueDate = &due
	}

	return resp
}

type Pagination struct {
	HasNext    bool   `json:"has_next"`
	NextCursor string `json:"next_cursor"`
}

type TaskPage struct {
	Size         int            `json:"size"`
	Total        int            `json:"total"`
	Data         []TaskResponse `json:"data"`
	EmptyMessage string         `json:"empty_message,omitempty"`
	Pagination   Pagination     `json:"pagination"`
}

type TaskStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

type TagCount struct {
	Tag       string `json:"tag"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

type WeatherResponse struct {
	City        string    `json:"city"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Temperature int       `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	IconURL     string    `json:"icon_url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

func NewWeatherResponse(report domain.WeatherReport) WeatherResponse {
	return WeatherResponse{
		City:        report.City,
		Condition:   report.Condition,
		Description: report.Description,
		Temperature: report.RoundedTemperature(),
		FeelsLike:   report.FeelsLike,
		Humidity:    report.Humidity,
		IconURL:     report.IconURL(),
		FetchedAt:   report.FetchedAt,
	}
}

type WeatherPanelResponse struct {
	SessionID string           `json:"session_id,omitempty"`
	Version   uint64           `json:"version,omitempty"`
	State     string           `json:"state"`
	City      string           `json:"city,omitempty"`
	Message   string           `json:"message,omitempty"`
	Weather   *WeatherResponse `json:"weather,omitempty"`
}

func NewWeatherPanelResponse(sessionID string, panel domain.WeatherPanel) WeatherPanelResponse {
	resp := WeatherPanelResponse{
		SessionID: sessionID,
		State:     string(panel.State),
		City:      panel.City,
		Message:   panel.Message,
	}

	if panel.Report != nil {
		weather := NewWeatherResponse(*panel.Report)
		resp.Weather = &weather
	}

	return resp
}

type CursorData struct {
	Offset int    `json:"offset"`
	Query  string `json:"query,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
