package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"straico-gateway/types"
)

func TestHandleModelsListReturnsCatalog(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	w := httptest.NewRecorder()
	HandleModelsList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var decoded types.ModelListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	require.Len(t, decoded.Data, len(catalog))
}

func TestHandleModelGetKnownFamily(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/models/anthropic", nil)
	w := httptest.NewRecorder()
	HandleModelGet(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHandleModelGetUnknownFamily404s(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/models/nonexistent-family", nil)
	w := httptest.NewRecorder()
	HandleModelGet(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
