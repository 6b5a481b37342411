package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Cheertaboi/class-coupon-ledger/internal/logging"
	"github.com/Cheertaboi/class-coupon-ledger/internal/service"
	"github.com/Cheertaboi/class-coupon-ledger/internal/validation"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Message string                  `json:"message,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Count   *int                    `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func writeData(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	count := len(items)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Envelope{Success: false, Message: message})
}

func writeValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation errors",
		Errors:  verr.Fields,
	})
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses a positive numeric URL parameter; signs and letters are rejected.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(id), true
}

// writeServiceError maps ledger outcomes to status codes and logs anything
// unexpected under logMsg.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, "Coupon not found")
	case errors.Is(err, service.ErrCouponUnavailable):
		writeError(w, http.StatusBadRequest, "Cannot use coupon - may be inactive, expired, or have no remaining classes")
	case errors.Is(err, service.ErrMemberNotFound):
		writeError(w, http.StatusBadRequest, "Member not found")
	case errors.Is(err, service.ErrInvalidClassCount):
		writeError(w, http.StatusBadRequest, "Classes must be a positive integer")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg(logMsg)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
