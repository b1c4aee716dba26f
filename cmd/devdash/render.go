package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	overdueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	priorityStyles = map[domain.Priority]lipgloss.Style{
		domain.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		domain.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		domain.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func shortID(task response.TaskResponse) string {
	return task.UUID.String()[:8]
}

func renderTask(task response.TaskResponse) string {
	check := "[ ]"
	text := task.Text

	switch {
	case task.Completed:
		check = "[x]"
		text = completedStyle.Render(text)
	case task.Overdue:
		text = overdueStyle.Render(text)
	}

	parts := []string{faintStyle.Render(shortID(task)), check, text}

	if task.PriorityLabel != "" {
		style := priorityStyles[domain.Priority(task.Priority)]
		parts = append(parts, style.Render("!"+task.PriorityLabel))
	}

	if task.DueDate != nil {
		due := "due " + *task.DueDate
		if task.Overdue {
			due = overdueStyle.Render(due + " (overdue)")
		}
		parts = append(parts, due)
	}

	for _, tag := range task.Tags {
		parts = append(parts, tagStyle.Render("#"+tag))
	}

	return strings.Join(parts, " ")
}

func renderPage(w io.Writer, page *response.TaskPage) {
	if page.EmptyMessage != "" {
		fmt.Fprintln(w, faintStyle.Render(page.EmptyMessage))
		return
	}

	if page.Total == 0 {
		fmt.Fprintln(w, faintStyle.Render("No tasks match."))
		return
	}

	for _, task := range page.Data {
		fmt.Fprintln(w, renderTask(task))
	}

	if page.Pagination.HasNext {
		fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("showing %d of %d, next: --cursor %s", page.Size, page.Total, page.Pagination.NextCursor)))
	}
}

func renderStats(w io.Writer, stats response.TaskStats) {
	fmt.Fprintln(w, titleStyle.Render("Tasks"))
	fmt.Fprintf(w, "total %d, active %d, completed %d", stats.Total, stats.Active, stats.Completed)

	if stats.Overdue > 0 {
		fmt.Fprint(w, ", ", overdueStyle.Render(fmt.Sprintf("overdue %d", stats.Overdue)))
	}

	fmt.Fprintln(w)
}

func renderWeather(w io.Writer, report response.WeatherResponse) {
	body := strings.Join([]string{
		titleStyle.Render(report.City),
		fmt.Sprintf("Temperature: %d°C", report.Temperature),
		fmt.Sprintf("Condition: %s (%s)", report.Condition, report.Description),
		fmt.Sprintf("Humidity: %d%%", report.Humidity),
		faintStyle.Render("fetched " + report.FetchedAt.Local().Format(time.Kitchen)),
	}, "\n")

	fmt.Fprintln(w, panelStyle.Render(body))
}
