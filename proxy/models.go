package proxy

import (
	"encoding/json"
	"net/http"
	"strings"

	"straico-gateway/apierror"
	"straico-gateway/promptformat"
	"straico-gateway/types"
)

// catalog is the static family-name table component L projects into a
// models listing. It carries no pricing or capability metadata since
// the gateway has no catalog service to query.
var catalog = promptformat.Families()

// HandleModelsList serves GET /v1/models.
func HandleModelsList(w http.ResponseWriter, r *http.Request) {
	data := make([]types.ModelObject, 0, len(catalog))
	for _, family := range catalog {
		data = append(data, types.ModelObject{ID: family, Object: "model", OwnedBy: "straico-gateway"})
	}
	writeJSON(w, http.StatusOK, types.ModelListing{Object: "list", Data: data})
}

// HandleModelGet serves GET /v1/models/{id}.
func HandleModelGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/models/")
	for _, family := range catalog {
		if family == id {
			writeJSON(w, http.StatusOK, types.ModelObject{ID: id, Object: "model", OwnedBy: "straico-gateway"})
			return
		}
	}
	writeJSONError(w, apierror.New(apierror.NotFound, "unknown model: "+id))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
