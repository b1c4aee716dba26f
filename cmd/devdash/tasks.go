package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	api "devdash/internal/adapter/http"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/model/transfer"
)

const minIDPrefix = 4

func tasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "manage the to-do list",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Value: "all", Usage: "all, active, completed or overdue"},
					&cli.StringFlag{Name: "tag"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
					&cli.StringFlag{Name: "sort", Value: "position", Usage: "position, alpha, priority, due, created or relevance"},
					&cli.BoolFlag{Name: "desc"},
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.StringFlag{Name: "cursor"},
				},
				Action: withContainer(listTasks),
			},
			{
				Name:      "add",
				Usage:     "add a task",
				ArgsUsage: "TEXT",
				Flags:     taskFlags(),
				Action:    withContainer(addTask),
			},
			{
				Name:      "edit",
				Usage:     "change a task",
				ArgsUsage: "ID",
				Flags:     append(taskFlags(), &cli.StringFlag{Name: "text"}),
				Action:    withContainer(editTask),
			},
			{
				Name:      "done",
				Usage:     "toggle a task between open and completed",
				ArgsUsage: "ID",
				Action:    withContainer(toggleTask),
			},
			{
				Name:      "rm",
				Usage:     "delete a task",
				ArgsUsage: "ID",
				Action:    withContainer(deleteTask),
			},
			{
				Name:  "clear",
				Usage: "delete every task",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation"},
				},
				Action: withContainer(clearTasks),
			},
			{
				Name:  "export",
				Usage: "write tasks as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "file to write, stdout when empty"},
				},
				Action: withContainer(exportTasks),
			},
			{
				Name:      "import",
				Usage:     "load tasks from a JSON export",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Value: string(transfer.ModeMerge), Usage: "merge or replace"},
				},
				Action: withContainer(importTasks),
			},
			{
				Name:   "stats",
				Usage:  "show task counts",
				Action: withContainer(showStats),
			},
		},
	}
}

func taskFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "high, medium, low or 1-3"},
		&cli.StringFlag{Name: "due", Usage: "due date as YYYY-MM-DD, empty to clear"},
		&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}},
	}
}

type containerAction func(c *cli.Context, container *api.Container) error

func withContainer(action containerAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		container, _, err := open(c)

		if err != nil {
			return err
		}

		defer container.Close()

		return action(c, container)
	}
}

func listTasks(c *cli.Context, container *api.Container) error {
	query := request.ListQuery{
		Filter: request.Filter(c.String("filter")),
		Tag:    c.String("tag"),
		Search: c.String("search"),
		Sort:   request.Sort(c.String("sort")),
		Desc:   c.Bool("desc"),
		Limit:  c.Int("limit"),
		Cursor: c.String("cursor"),
	}

	page, err := container.TaskService.List(c.Context, query)

	if err != nil {
		return err
	}

	renderPage(c.App.Writer, page)

	return nil
}

func addTask(c *cli.Context, container *api.Container) error {
	text := strings.Join(c.Args().Slice(), " ")

	priority, err := domain.ParsePriority(c.String("priority"))

	if err != nil {
		return err
	}

	task, err := container.TaskService.Add(c.Context, request.TaskRequest{
		Text:        text,
		Description: c.String("description"),
		Priority:    int(priority),
		DueDate:     c.String("due"),
		Tags:        c.StringSlice("tag"),
	})

	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "added", renderTask(response.NewTaskResponse(task, container.TaskService.Now())))

	return nil
}

func editTask(c *cli.Context, container *api.Container) error {
	task, err := resolveTask(c, container)

	if err != nil {
		return err
	}

	var patch request.TaskPatchRequest

	if c.IsSet("text") {
		text := c.String("text")
		patch.Text = &text
	}

	if c.IsSet("description") {
		description := c.String("description")
		patch.Description = &description
	}

	if c.IsSet("priority") {
		priority, err := domain.ParsePriority(c.String("priority"))

		if err != nil {
			return err
		}

		value := int(priority)
		patch.Priority = &value
	}

	if c.IsSet("due") {
		due := c.String("due")
		patch.DueDate = &due
	}

	if c.IsSet("tag") {
		tags := c.StringSlice("tag")
		patch.Tags = &tags
	}

	updated, err := container.TaskService.Edit(c.Context, task.UUID.String(), patch)

	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "updated", renderTask(response.NewTaskResponse(updated, container.TaskService.Now())))

	return nil
}

func toggleTask(c *cli.Context, container *api.Container) error {
	task, err := resolveTask(c, container)

	if err != nil {
		return err
	}

	toggled, err := container.TaskService.Toggle(c.Context, task.UUID.String())

	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, renderTask(response.NewTaskResponse(toggled, container.TaskService.Now())))

	return nil
}

func deleteTask(c *cli.Context, container *api.Container) error {
	task, err := resolveTask(c, container)

	if err != nil {
		return err
	}

	if err := container.TaskService.Delete(c.Context, task.UUID.String()); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "deleted", task.Text)

	return nil
}

func clearTasks(c *cli.Context, container *api.Container) error {
	if !c.Bool("yes") {
		return errors.New("refusing to clear every task without --yes")
	}

	count, err := container.TaskService.ClearAll(c.Context)

	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "cleared %d tasks\n", count)

	return nil
}

func exportTasks(c *cli.Context, container *api.Container) error {
	doc, err := container.TransferService.Export(c.Context)

	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")

	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "exported %d tasks to %s\n", len(doc.Tasks), out)
		return nil
	}

	fmt.Fprintln(c.App.Writer, string(data))

	return nil
}

func importTasks(c *cli.Context, container *api.Container) error {
	if c.NArg() != 1 {
		return errors.New("import needs exactly one FILE argument")
	}

	mode, ok := transfer.ParseMode(c.String("mode"))

	if !ok {
		return fmt.Errorf("unknown import mode %q", c.String("mode"))
	}

	data, err := os.ReadFile(c.Args().First())

	if err != nil {
		return err
	}

	result, err := container.TransferService.Import(c.Context, data, mode)

	var recordErrors *multierror.Error

	if err != nil && (errors.Is(err, domain.ErrInvalidImport) || !errors.As(err, &recordErrors)) {
		return err
	}

	fmt.Fprintf(c.App.Writer, "imported %d tasks\n", result.Imported)

	for _, msg := range result.Errors {
		fmt.Fprintln(c.App.Writer, errorStyle.Render("skipped "+msg))
	}

	return nil
}

func showStats(c *cli.Context, container *api.Container) error {
	stats, err := container.TaskService.Stats(c.Context)

	if err != nil {
		return err
	}

	renderStats(c.App.Writer, stats)

	return nil
}

// resolveTask accepts a full UUID or a unique prefix of at least four characters.
func resolveTask(c *cli.Context, container *api.Container) (domain.Task, error) {
	id := strings.ToLower(strings.TrimSpace(c.Args().First()))

	if id == "" {
		return domain.Task{}, errors.New("missing task ID")
	}

	if task, err := container.TaskService.Get(c.Context, id); err == nil {
		return task, nil
	}

	if len(id) < minIDPrefix {
		return domain.Task{}, fmt.Errorf("task ID %q is too short", id)
	}

	tasks, err := container.TaskRepo.GetAll(c.Context)

	if err != nil {
		return domain.Task{}, err
	}

	var matches []domain.Task

	for _, task := range tasks {
		if strings.HasPrefix(task.UUID.String(), id) {
			matches = append(matches, task)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, fmt.Errorf("task ID %q is ambiguous", id)
	}
}
