package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"trade-journal/internal/ingest"
)

type errorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Pending int      `json:"pending,omitempty"`
	Skipped int      `json:"skipped,omitempty"`
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeLoadError maps a rejected load onto a status code. Input problems are
// 422; an unreadable or oversized upload is 400 or 413.
func writeLoadError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var missing *ingest.MissingColumnsError
	var none *ingest.NoCompletedTradesError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, body.Code = http.StatusRequestEntityTooLarge, "too_large"
	case errors.As(err, &missing):
		status, body.Code = http.StatusUnprocessableEntity, "missing_columns"
		body.Columns = missing.Columns
	case errors.As(err, &none):
		status, body.Code = http.StatusUnprocessableEntity, "no_completed_trades"
		body.Pending, body.Skipped = none.Pending, none.Skipped
	case errors.Is(err, ingest.ErrEmptyInput):
		status, body.Code = http.StatusUnprocessableEntity, "empty_input"
	case errors.Is(err, ingest.ErrReadFailure):
		status, body.Code = http.StatusBadRequest, "read_failure"
	}
	writeJSON(w, status, body)
}
