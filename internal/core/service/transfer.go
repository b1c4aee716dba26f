package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/transfer"
	"devdash/internal/core/port"
	"devdash/internal/core/telemetry"
)

const importSchemaURL = "tasks-import.json"

type TransferService struct {
	repo      port.TaskRepository
	validator port.Validator
	schema    *jsonschema.Schema
	metrics   *telemetry.AppMetrics
	now       func() time.Time
}

func NewTransferService(repo port.TaskRepository, validator port.Validator, metrics *telemetry.AppMetrics) (*TransferService, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(importSchemaURL, strings.NewReader(transfer.Schema)); err != nil {
		return nil, fmt.Errorf("load import schema: %w", err)
	}

	schema, err := compiler.Compile(importSchemaURL)

	if err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}

	return &TransferService{
		repo:      repo,
		validator: validator,
		schema:    schema,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

func (ts *TransferService) Export(ctx context.Context) (transfer.Document, error) {
	tasks, err := ts.repo.GetAll(ctx)

	if err != nil {
		return transfer.Document{}, err
	}

	doc := transfer.Document{
		Version:    transfer.Version,
		ExportedAt: ts.now().UTC(),
		Tasks:      make([]transfer.Record, 0, len(tasks)),
	}

	for _, task := range tasks {
		record := transfer.Record{
			Text:        task.Text,
			Completed:   task.Completed,
			Created:     transfer.NewTimestamp(task.CreatedAt),
			Priority:    int(task.Priority),
			Tags:        task.Tags,
			Description: task.Description,
		}

		if task.DueDate != nil {
			due := task.DueDateString()
			record.DueDate = &due
		}

		doc.Tasks = append(doc.Tasks, record)
	}

	ts.metrics.RecordTaskOperation(ctx, "export")

	return doc, nil
}

// Import loads an export document or a bare array of records. Problems
// with the document as a whole wrap domain.ErrInvalidImport and import
// nothing. Problems with single records skip those records; the rest are
// stored and the skipped ones come back as a *multierror.Error.
func (ts *TransferService) Import(ctx context.Context, data []byte, mode transfer.Mode) (transfer.Result, error) {
	var result transfer.Result

	records, err := ts.decode(data)

	if err != nil {
		return result, err
	}

	now := ts.now()
	tasks := make([]domain.Task, 0, len(records))

	var errs *multierror.Error

	for i, record := range records {
		task, err := ts.toTask(record, now)

		if err != nil {
			result.Skipped++
			errs = multierror.Append(errs, fmt.Errorf("task %d: %w", i, err))
			continue
		}

		tasks = append(tasks, task)
	}

	saved, err := ts.repo.CreateMany(ctx, tasks, mode == transfer.ModeReplace)

	if err != nil {
		return transfer.Result{}, err
	}

	result.Imported = len(saved)

	if errs != nil {
		for _, e := range errs.Errors {
			result.Errors = append(result.Errors, e.Error())
		}
	}

	ts.metrics.RecordTaskOperation(ctx, "import")

	return result, errs.ErrorOrNil()
}

func (ts *TransferService) decode(data []byte) ([]transfer.Record, error) {
	var raw interface{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	if err := ts.schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImport, schemaErrors(err))
	}

	if _, ok := raw.([]interface{}); ok {
		var records []transfer.Record

		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
		}

		return records, nil
	}

	var doc transfer.Document

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	return doc.Tasks, nil
}

func (ts *TransferService) toTask(record transfer.Record, now time.Time) (domain.Task, error) {
	text := domain.NormalizeText(record.Text)

	if text == "" {
		return domain.Task{}, domain.ErrEmptyText
	}

	if err := checkRecordLimits(record); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
	}

	task := domain.Task{
		UUID:        uuid.New(),
		Text:        text,
		Description: strings.TrimSpace(record.Description),
		Completed:   record.Completed,
		Priority:    domain.Priority(record.Priority),
		Tags:        domain.NormalizeTags(record.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if record.Created != nil && !record.Created.IsZero() {
		task.CreatedAt = record.Created.Time
	}

	if record.DueDate != nil {
		dueDate, err := domain.ParseDueDate(*record.DueDate)

		if err != nil {
			return domain.Task{}, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
		}

		task.DueDate = dueDate
	}

	if ts.validator != nil {
		if err := ts.validator.ValidateStruct(task); err != nil {
			return domain.Task{}, fmt.Errorf("%w: %v", domain.ErrInvalidTask, err)
		}
	}

	return task, nil
}

// checkRecordLimits applies the limits Add enforces, so a record that
// breaks one is skipped rather than stored altered.
func checkRecordLimits(record transfer.Record) error {
	if n := utf8.RuneCountInString(domain.NormalizeText(record.Text)); n > domain.MaxTextLength {
		return fmt.Errorf("text must be at most %d characters, got %d", domain.MaxTextLength, n)
	}

	if n := utf8.RuneCountInString(record.Description); n > domain.MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters, got %d", domain.MaxDescriptionLength, n)
	}

	if record.Priority < int(domain.PriorityUnset) || record.Priority > int(domain.PriorityLow) {
		return fmt.Errorf("priority must be between 0 and 3, got %d", record.Priority)
	}

	tags := domain.NormalizeTags(record.Tags)

	if len(tags) > domain.MaxTags {
		return fmt.Errorf("at most %d tags allowed, got %d", domain.MaxTags, len(tags))
	}

	for _, tag := range tags {
		if n := utf8.RuneCountInString(tag); n > domain.MaxTagLength {
			return fmt.Errorf("tag %q must be at most %d characters, got %d", tag, domain.MaxTagLength, n)
		}
	}

	return nil
}

// schemaErrors flattens a schema failure into its leaf causes.
func schemaErrors(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)

	if !ok {
		return err
	}

	var result *multierror.Error
	collectSchemaErrors(ve, &result)

	if result == nil {
		return err
	}

	return result.ErrorOrNil()
}

func collectSchemaErrors(err *jsonschema.ValidationError, result **multierror.Error) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}

		*result = multierror.Append(*result, fmt.Errorf("%s: %s", location, err.Message))
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}
