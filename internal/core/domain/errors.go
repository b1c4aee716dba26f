package domain

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrEmptyText          = errors.New("task text is empty")
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidImport      = errors.New("invalid import document")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrEmptyCity          = errors.New("city is empty")
	ErrCityNotFound       = errors.New("city not found")
	ErrWeatherUnavailable = errors.New("weather data unavailable")
	ErrSessionNotFound    = errors.New("weather session not found")
)
