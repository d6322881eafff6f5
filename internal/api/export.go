package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ticketlens/ticketlens/internal/warehouse"
	"github.com/ticketlens/ticketlens/internal/warehouse/omni"
)

// handleExport acquires the account's warehouse rows and streams them back
// as a parquet file. Unlike the webhook routes it keeps the structured
// error envelope: the caller here is an operator or script, not the
// helpdesk card renderer.
func handleExport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Engine == nil || deps.Template == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "export dependencies are not configured", false, nil)
		return
	}

	accountID := r.URL.Query().Get("requester_email")
	if accountID == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "REQUESTER_EMAIL_REQUIRED", "requester_email is required", false, nil)
		return
	}

	document, err := deps.Template.Bind(accountID)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "TEMPLATE_ERROR", err.Error(), false, nil)
		return
	}

	table, err := deps.Engine.Acquire(r.Context(), document)
	if err != nil {
		deps.Logger.ErrorContext(r.Context(), "export acquisition failed", "requester_email", accountID, "error", err)
		writeAcquireError(r, w, err)
		return
	}

	buf, err := warehouse.EncodeTableToParquet(table)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error(), false, nil)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="account_data.parquet"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

func writeAcquireError(r *http.Request, w http.ResponseWriter, err error) {
	var timeoutErr *omni.PollTimeoutError
	if errors.As(err, &timeoutErr) {
		writeError(r.Context(), w, http.StatusGatewayTimeout, "ACQUIRE_TIMEOUT", err.Error(), true, map[string]any{
			"job_ids": timeoutErr.JobIDs,
			"timeout": timeoutErr.Timeout.String(),
		})
		return
	}
	var transportErr *omni.TransportError
	if errors.As(err, &transportErr) {
		writeError(r.Context(), w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error(), true, nil)
		return
	}
	var executionErr *omni.ExecutionError
	if errors.As(err, &executionErr) {
		writeError(r.Context(), w, http.StatusBadGateway, "EXECUTION_FAILED", err.Error(), false, map[string]any{
			"status": executionErr.StatusCode,
		})
		return
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error(), false, nil)
}
