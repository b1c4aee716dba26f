package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

const (
	MaxTextLength        = 500
	MaxDescriptionLength = 1000
	MaxTags              = 10
	MaxTagLength         = 32
)

type Priority int

const (
	PriorityUnset Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

type Task struct {
	ID          int
	UUID        uuid.UUID
	Text        string `validate:"required,max=500"`
	Description string `validate:"max=1000"`
	Completed   bool
	Priority    Priority `validate:"min=0,max=3"`
	DueDate     *time.Time
	Tags        []string `validate:"max=10,dive,min=1,max=32"`
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Overdue reports whether an open task's due date lies before the day of now.
func (t *Task) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, time.UTC)

	return due.Before(today)
}

func (t *Task) HasTag(tag string) bool {
	tag = NormalizeTag(tag)

	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}

	return false
}

func (t *Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}

	return t.DueDate.Format(DateLayout)
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return ""
	}
}

// ParsePriority accepts the numeric form (1..3) or the name.
func ParsePriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "none":
		return PriorityUnset, nil
	case "1", "high":
		return PriorityHigh, nil
	case "2", "medium":
		return PriorityMedium, nil
	case "3", "low":
		return PriorityLow, nil
	default:
		return PriorityUnset, fmt.Errorf("invalid priority: %s", value)
	}
}

// ParseDueDate parses a YYYY-MM-DD date. Empty input means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return nil, nil
	}

	date, err := time.Parse(DateLayout, value)

	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", value)
	}

	return &date, nil
}

func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "#")

	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = NormalizeTag(tag)

		if tag == "" {
			continue
		}

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}
