package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/commands"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/queries"
	"github.com/go-chi/chi/v5"
)

const (
	IndexParam = "index"

	msgListFetched       = "list fetched"
	msgActiveListFetched = "active devices fetched"
	msgRecordAdded       = "record added"
	msgRecordUpdated     = "record updated"
	msgRecordDeleted     = "record deleted"
	msgDeviceEnabled     = "device enabled"
	msgDeviceDisabled    = "device disabled"
	msgListReplaced      = "list replaced"
)

type ListHandler struct {
	app          *usecases.Application
	maxBodyBytes int64
}

func NewListHandler(app *usecases.Application, maxBodyBytes int64) *ListHandler {
	return &ListHandler{app: app, maxBodyBytes: maxBodyBytes}
}

func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.app.Queries.ListRecords.Execute(r.Context(), queries.ListRecordsQuery{
		StatusFilter: r.URL.Query().Get("status"),
	})
	if err != nil {
		writeError(w, err)

		return
	}

	writeSnapshot(w, snapshot, msgListFetched)
}

func (h *ListHandler) GetActiveList(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.app.Queries.ListActiveRecords.Execute(r.Context(), queries.ListActiveRecordsQuery{})
	if err != nil {
		writeError(w, err)

		return
	}

	writeSnapshot(w, snapshot, msgActiveListFetched)
}

func (h *ListHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	list, err := h.app.Commands.CreateRecord.Handle(r.Context(), commands.CreateRecordCommand{Candidate: body})
	if err != nil {
		writeError(w, err)

		return
	}

	writeSuccess(w, nonNil(list), msgRecordAdded)
}

func (h *ListHandler) ReplaceList(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	var candidates any
	if object, isObject := body.(map[string]any); isObject {
		candidates = object["list"]
	}

	list, err := h.app.Commands.ReplaceList.Handle(r.Context(), commands.ReplaceListCommand{Candidates: candidates})
	if err != nil {
		writeError(w, err)

		return
	}

	writeSuccess(w, nonNil(list), msgListReplaced)
}

func (h *ListHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	index, err := model.ParseIndex(chi.URLParam(r, IndexParam))
	if err != nil {
		writeError(w, err)

		return
	}

	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	list, err := h.app.Commands.UpdateRecord.Handle(r.Context(), commands.UpdateRecordCommand{
		Index:     index,
		Candidate: body,
	})
	if err != nil {
		writeError(w, err)

		return
	}

	writeSuccess(w, nonNil(list), msgRecordUpdated)
}

func (h *ListHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	index, err := model.ParseIndex(chi.URLParam(r, IndexParam))
	if err != nil {
		writeError(w, err)

		return
	}

	result, err := h.app.Commands.DeleteRecord.Handle(r.Context(), commands.DeleteRecordCommand{Index: index})
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, Envelope{
		Success:     true,
		Data:        nonNil(result.List),
		DeletedItem: &result.Deleted,
		Message:     msgRecordDeleted,
	})
}

func (h *ListHandler) ToggleRecord(w http.ResponseWriter, r *http.Request) {
	index, err := model.ParseIndex(chi.URLParam(r, IndexParam))
	if err != nil {
		writeError(w, err)

		return
	}

	record, err := h.app.Commands.ToggleRecord.Handle(r.Context(), commands.ToggleRecordCommand{Index: index})
	if err != nil {
		writeError(w, err)

		return
	}

	message := msgDeviceDisabled
	if record.IsActive() {
		message = msgDeviceEnabled
	}

	writeSuccess(w, record, message)
}

// decodeBody reads a JSON document of any shape; the service validates it.
func (h *ListHandler) decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var body any

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeFailure(w, http.StatusRequestEntityTooLarge, codeInvalidJSON, msgInvalidJSON, err.Error())

			return nil, false
		}

		if errors.Is(err, io.EOF) {
			return nil, true
		}

		writeFailure(w, http.StatusBadRequest, codeInvalidJSON, msgInvalidJSON, err.Error())

		return nil, false
	}

	return body, true
}

func writeSnapshot(w http.ResponseWriter, snapshot model.Snapshot, message string) {
	if snapshot.Degraded {
		w.Header().Set(StorageDegradedHeader, "true")
	}

	writeSuccess(w, nonNil(snapshot.List), message)
}
