package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// envelope is the body shape of listing and review responses.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSON encodes before writing the status, so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// writeError maps a usecase error to its status and writes the envelope.
// Unknown errors are logged and reported as 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status, message := describeError(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	}
	writeFail(w, status, message)
}

func describeError(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, publicMessage(err, e.err)
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// publicMessage strips the sentinel prefix from "sentinel: message".
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: Invalid request body", domain.ErrInvalidInput)
	}
	return nil
}
