package handlers

import "net/http"

type apiIndex struct {
	Message   string            `json:"message"`
	Backend   string            `json:"backend,omitempty"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index describes the available endpoints.
func Index(backend string) http.HandlerFunc {
	index := apiIndex{
		Message: "List manager service API",
		Backend: backend,
		Endpoints: map[string]string{
			"GET /api/list":               "get the list, ?status=active returns active devices only",
			"GET /api/list/active":        "get active devices",
			"POST /api/list":              "add a record to the list",
			"PUT /api/list":               "replace the whole list",
			"PUT /api/list/:index":        "update the record at index",
			"PUT /api/list/:index/toggle": "toggle the device status at index",
			"DELETE /api/list/:index":     "delete the record at index",
		},
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, index)
	}
}
