package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"leadsyncflow.app/internal/auth"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform failure envelope.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		w.Header().Set("X-Request-Id", rid)
	}
	writeJSON(w, code, map[string]any{
		"success": false,
		"message": msg,
	})
}

// handleServiceError is the single boundary translator from the error
// taxonomy to HTTP status codes. Uncategorized faults default to 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *auth.Error
	msg := "Server error"
	if errors.As(err, &e) {
		msg = e.Message
	}
	switch auth.KindOf(err) {
	case auth.KindBadRequest:
		writeError(w, r, http.StatusBadRequest, msg)
	case auth.KindUnauthorized:
		writeError(w, r, http.StatusUnauthorized, msg)
	case auth.KindForbidden:
		writeError(w, r, http.StatusForbidden, msg)
	case auth.KindConflict:
		writeError(w, r, http.StatusConflict, msg)
	case auth.KindNotFound:
		writeError(w, r, http.StatusNotFound, msg)
	default:
		writeError(w, r, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
