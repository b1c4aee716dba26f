package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Overdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	t.Run("should be overdue when due before today", func(t *testing.T) {
		due := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		task := Task{DueDate: &due}

		assert.True(t, task.Overdue(now))
	})

	t.Run("should not be overdue on the due date", func(t *testing.T) {
		due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		task := Task{DueDate: &due}

		assert.False(t, task.Overdue(now))
	})

	t.Run("should not be overdue when completed", func(t *testing.T) {
		due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		task := Task{DueDate: &due, Completed: true}

		assert.False(t, task.Overdue(now))
	})

	t.Run("should not be overdue without due date", func(t *testing.T) {
		assert.False(t, (&Task{}).Overdue(now))
	})

	t.Run("should compare against the UTC date of now", func(t *testing.T) {
		// 01:00 on the 10th in UTC+5 is still the 9th in UTC
		ahead := time.Date(2026, 3, 10, 1, 0, 0, 0, time.FixedZone("UTC+5", 5*60*60))
		due := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		task := Task{DueDate: &due}

		assert.False(t, task.Overdue(ahead))
		assert.True(t, task.Overdue(ahead.Add(24*time.Hour)))
	})
}

func TestTask_IsDeleted(t *testing.T) {
	now := time.Now()

	assert.False(t, (&Task{}).IsDeleted())
	assert.True(t, (&Task{DeletedAt: &now}).IsDeleted())
}

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{" Work ", "#home", "work", "", "  ", "HOME", "errands"})

	assert.Equal(t, []string{"work", "home", "errands"}, tags)
}

func TestTask_HasTag(t *testing.T) {
	task := Task{Tags: []string{"work", "home"}}

	assert.True(t, task.HasTag("#Work"))
	assert.False(t, task.HasTag("gym"))
}

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"":       PriorityUnset,
		"1":      PriorityHigh,
		"high":   PriorityHigh,
		"2":      PriorityMedium,
		"Medium": PriorityMedium,
		"3":      PriorityLow,
		"low":    PriorityLow,
	}

	for input, expected := range cases {
		priority, err := ParsePriority(input)

		assert.NoError(t, err, input)
		assert.Equal(t, expected, priority, input)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestParseDueDate(t *testing.T) {
	t.Run("should parse calendar date", func(t *testing.T) {
		date, err := ParseDueDate("2026-05-01")

		assert.NoError(t, err)
		assert.Equal(t, "2026-05-01", date.Format(DateLayout))
	})

	t.Run("should return nil for empty value", func(t *testing.T) {
		date, err := ParseDueDate("  ")

		assert.NoError(t, err)
		assert.Nil(t, date)
	})

	t.Run("should reject other layouts", func(t *testing.T) {
		_, err := ParseDueDate("01/05/2026")

		assert.Error(t, err)
	})
}

func TestWeatherReport_Display(t *testing.T) {
	report := WeatherReport{Icon: "10d", Temperature: 21.6}

	assert.Equal(t, "http://openweathermap.org/img/wn/10d@2x.png", report.IconURL())
	assert.Equal(t, 22, report.RoundedTemperature())
	assert.Equal(t, "", WeatherReport{}.IconURL())
}

func TestWeatherPanels(t *testing.T) {
	assert.Equal(t, MessageEnterCity, IdlePanel().Message)
	assert.Equal(t, PanelLoading, LoadingPanel("Lima").State)
	assert.Equal(t, MessageWeatherUnavailable, FailedPanel("Lima").Message)

	panel := ReadyPanel("Lima", WeatherReport{City: "Lima"})
	assert.Equal(t, PanelReady, panel.State)
	assert.Equal(t, "Lima", panel.Report.City)
}
