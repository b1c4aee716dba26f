package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"devdash/internal/core/domain"
)

// NewTask builds a task with random content. Fields not named in
// customData get deterministic values so tests control ordering, dates
// and completion explicitly.
func NewTask(customData ...map[string]any) domain.Task {
	overrides := make(map[string]any)
	for _, data := range customData {
		for k, v := range data {
			overrides[k] = v
		}
	}

	task := fab.New(domain.Task{}).Build(overrides)
	now := time.Now()

	defaults := map[string]func(){
		"ID":          func() { task.ID = 0 },
		"UUID":        func() { task.UUID = uuid.New() },
		"Text":        func() { task.Text = "Task " + uuid.NewString()[:8] },
		"Description": func() { task.Description = "" },
		"Completed":   func() { task.Completed = false },
		"Priority":    func() { task.Priority = domain.PriorityUnset },
		"DueDate":     func() { task.DueDate = nil },
		"Tags":        func() { task.Tags = []string{} },
		"Position":    func() { task.Position = 0 },
		"CreatedAt":   func() { task.CreatedAt = now },
		"UpdatedAt":   func() { task.UpdatedAt = now },
		"DeletedAt":   func() { task.DeletedAt = nil },
	}

	for field, apply := range defaults {
		if _, ok := overrides[field]; !ok {
			apply()
		}
	}

	return task
}

// DueIn returns a calendar date offset from today, for DueDate overrides.
func DueIn(days int) *time.Time {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day()+days, 0, 0, 0, 0, time.UTC)

	return &date
}
