package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	. "devdash/internal/adapter/http/helper"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
	"devdash/internal/core/model/transfer"
	"devdash/internal/core/port"
	"devdash/pkg/config"
)

const maxImportBytes = 1 << 20

type TransferHandler struct {
	svc    port.TransferService
	Logger *config.LokiLogger
}

func NewTransferHandler(transferService port.TransferService, logger *config.LokiLogger) *TransferHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TransferHandler{
		svc:    transferService,
		Logger: logger,
	}
}

func (t *TransferHandler) ExportTasks(c *gin.Context) {
	doc, err := t.svc.Export(c.Request.Context())

	if err != nil {
		t.Logger.ErrorWithTrace(c.Request.Context(), "Failed to export tasks", zap.Error(err))

		SendInternalError(c, "Error exporting tasks")
		return
	}

	filename := fmt.Sprintf("devdash-tasks-%s.json", doc.ExportedAt.Format(domain.DateLayout))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.IndentedJSON(http.StatusOK, doc)
}

// ImportTasks answers 200 with the partial result when only some records
// were rejected, and 400 when the document itself is unusable.
func (t *TransferHandler) ImportTasks(c *gin.Context) {
	ctx := c.Request.Context()

	mode, ok := transfer.ParseMode(c.Query("mode"))

	if !ok {
		SendBadRequestError(c, "mode", "Mode must be merge or replace")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))

	if err != nil {
		SendBadRequestError(c, "body", "Import document is too large or unreadable")
		return
	}

	result, err := t.svc.Import(ctx, body, mode)

	var recordErrors *multierror.Error

	switch {
	case err == nil:
		SendSuccess(c, http.StatusOK, result, fmt.Sprintf("Imported %d tasks", result.Imported))
	case errors.Is(err, domain.ErrInvalidImport):
		SendError(c, http.StatusBadRequest, "BAD_REQUEST", importErrors(err))
	case errors.As(err, &recordErrors):
		t.Logger.WarnWithTrace(ctx, "Import skipped records",
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped))

		SendSuccess(c, http.StatusOK, result, fmt.Sprintf("Imported %d tasks, skipped %d", result.Imported, result.Skipped))
	default:
		t.Logger.ErrorWithTrace(ctx, "Import failed", zap.Error(err))

		SendInternalError(c, "Error importing tasks")
	}
}

func importErrors(err error) []response.ValidationError {
	var schemaErrors *multierror.Error

	if !errors.As(err, &schemaErrors) {
		return []response.ValidationError{{Field: "document", Message: err.Error()}}
	}

	out := make([]response.ValidationError, 0, len(schemaErrors.Errors))

	for _, e := range schemaErrors.Errors {
		field, message, found := strings.Cut(e.Error(), ": ")

		if !found {
			field, message = "document", e.Error()
		}

		out = append(out, response.ValidationError{Field: field, Message: message})
	}

	return out
}
