package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	// StorageDegradedHeader marks read responses served without reaching the backend.
	StorageDegradedHeader = "X-Storage-Degraded"

	codeInvalidInput     = "INVALID_INPUT"
	codeDuplicateID      = "DUPLICATE_ID"
	codeIndexOutOfRange  = "INDEX_OUT_OF_RANGE"
	codeInvalidJSON      = "INVALID_JSON"
	codeStorageDegraded  = "STORAGE_DEGRADED"
	codePersistFailed    = "PERSIST_FAILED"
	codeInternalError    = "INTERNAL_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	msgInvalidJSON      = "request body must be valid JSON"
	msgStorageDegraded  = "storage is unavailable, try again later"
	msgPersistFailed    = "failed to save data"
	msgInternalError    = "internal server error"
	msgRouteNotFound    = "route not found"
	msgMethodNotAllowed = "method not allowed"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success     bool          `json:"success"`
	Data        any           `json:"data,omitempty"`
	DeletedItem *model.Record `json:"deletedItem,omitempty"`
	Message     string        `json:"message"`
	Code        string        `json:"code,omitempty"`
	Error       string        `json:"error,omitempty"`
}

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, data any, message string) {
	writeJSONResponse(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, code, message, detail string) {
	writeJSONResponse(w, status, Envelope{
		Success: false,
		Message: message,
		Code:    code,
		Error:   detail,
	})
}

// writeError maps the error taxonomy onto status codes. Client errors carry
// their own message; server errors add the cause in the error field.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, codeInvalidInput, err.Error(), "")
	case errors.Is(err, model.ErrDuplicateID):
		writeFailure(w, http.StatusBadRequest, codeDuplicateID, err.Error(), "")
	case errors.Is(err, model.ErrIndexOutOfRange):
		writeFailure(w, http.StatusBadRequest, codeIndexOutOfRange, err.Error(), "")
	case errors.Is(err, model.ErrStorageDegraded):
		writeFailure(w, http.StatusServiceUnavailable, codeStorageDegraded, msgStorageDegraded, err.Error())
	case errors.Is(err, model.ErrPersistFailed):
		writeFailure(w, http.StatusInternalServerError, codePersistFailed, msgPersistFailed, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, codeInternalError, msgInternalError, err.Error())
	}
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, codeNotFound, msgRouteNotFound, "")
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, msgMethodNotAllowed, "")
}

func nonNil(list model.List) model.List {
	if list == nil {
		return model.List{}
	}

	return list
}
