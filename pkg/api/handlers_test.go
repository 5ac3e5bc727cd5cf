package api

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformkit/knobstore/pkg/knob"
	"github.com/platformkit/knobstore/pkg/varstore"
)

var nsPlatform = uuid.MustParse("d9a7c912-33f0-4b8e-9c01-5566778899aa")

// Prometheus collectors register globally, so all tests share one set.
var testMetrics = NewMetrics()

func setupTestRouter(t *testing.T) (chi.Router, varstore.Store) {
	t.Helper()
	store := varstore.NewMemStore()

	table, err := knob.NewTable([]knob.Descriptor{
		{Name: "BootTimeout", Namespace: nsPlatform, Size: 4,
			Default: []byte{30, 0, 0, 0}, Validator: knob.Range(1, 300)},
		{Name: "DebugMode", Namespace: nsPlatform, Size: 1,
			Default: []byte{0}, Validator: knob.BoolStrict()},
	})
	require.NoError(t, err)

	// varstore.Store satisfies the resolver's store interface directly.
	resolver := knob.NewResolver(table, store)
	server := NewServer(store, resolver, ServerConfig{APIKey: "test-key"}, testMetrics)
	return NewRouter(server, testMetrics), store
}

func doRequest(t *testing.T, router chi.Router, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("X-API-Key", "test-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestHandleHealth(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.True(t, response.Success)
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVarRoundTrip(t *testing.T) {
	router, _ := setupTestRouter(t)
	path := "/api/v1/vars/" + nsPlatform.String() + "/BootTimeout"

	body, _ := json.Marshal(VarRequest{
		Attributes: 7,
		Data:       base64.StdEncoding.EncodeToString([]byte{60, 0, 0, 0}),
	})
	w := doRequest(t, router, "PUT", path, body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, "GET", path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	require.True(t, response.Success)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "BootTimeout", data["name"])
	assert.Equal(t, float64(7), data["attributes"])
	assert.Equal(t, float64(4), data["size"])
	raw, err := base64.StdEncoding.DecodeString(data["data"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte{60, 0, 0, 0}, raw)

	w = doRequest(t, router, "DELETE", path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, "GET", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVar_Errors(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/vars/not-a-guid/Name", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, "GET", "/api/v1/vars/"+nsPlatform.String()+"/Absent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutVar_Rejections(t *testing.T) {
	router, _ := setupTestRouter(t)
	path := "/api/v1/vars/" + nsPlatform.String() + "/K"

	w := doRequest(t, router, "PUT", path, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(VarRequest{Data: "!!! not base64 !!!"})
	w = doRequest(t, router, "PUT", path, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ = json.Marshal(VarRequest{Data: ""})
	w = doRequest(t, router, "PUT", path, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListVars_NamespaceFilter(t *testing.T) {
	router, store := setupTestRouter(t)
	other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	require.NoError(t, store.Set(nsPlatform, "A", 0, []byte{1}))
	require.NoError(t, store.Set(other, "B", 0, []byte{2}))

	w := doRequest(t, router, "GET", "/api/v1/vars?namespace="+nsPlatform.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	vars := response.Data.(map[string]interface{})["variables"].([]interface{})
	require.Len(t, vars, 1)
	assert.Equal(t, "A", vars[0].(map[string]interface{})["name"])

	w = doRequest(t, router, "GET", "/api/v1/vars?namespace=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	router, store := setupTestRouter(t)
	require.NoError(t, store.Set(nsPlatform, "A", 0, []byte{1, 2, 3}))

	w := doRequest(t, router, "GET", "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["variables"])
	assert.Equal(t, float64(3), data["data_size"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	router, store := setupTestRouter(t)
	require.NoError(t, store.Set(nsPlatform, "Keep", 1, []byte("payload")))

	w := doRequest(t, router, "GET", "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Snapshot-ID"))
	snapshot := w.Body.Bytes()

	// Import into a fresh deployment.
	router2, store2 := setupTestRouter(t)
	w = doRequest(t, router2, "POST", "/api/v1/snapshot", snapshot)
	require.Equal(t, http.StatusOK, w.Code)

	record, err := store2.Get(nsPlatform, "Keep")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), record.Data)
}

func TestImportSnapshot_RejectsCorrupt(t *testing.T) {
	router, store := setupTestRouter(t)
	require.NoError(t, store.Set(nsPlatform, "Keep", 1, []byte("payload")))

	w := doRequest(t, router, "GET", "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := w.Body.Bytes()
	snapshot[len(snapshot)-1] ^= 0xFF

	router2, store2 := setupTestRouter(t)
	w = doRequest(t, router2, "POST", "/api/v1/snapshot", snapshot)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store2.Stats().Variables)
}

func TestListKnobs(t *testing.T) {
	router, store := setupTestRouter(t)
	require.NoError(t, store.Set(nsPlatform, "BootTimeout", 0, []byte{60, 0, 0, 0}))

	w := doRequest(t, router, "GET", "/api/v1/knobs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	knobs := response.Data.(map[string]interface{})["knobs"].([]interface{})
	require.Len(t, knobs, 2)

	first := knobs[0].(map[string]interface{})
	assert.Equal(t, "BootTimeout", first["name"])
	assert.Equal(t, "stored", first["source"])

	second := knobs[1].(map[string]interface{})
	assert.Equal(t, "DebugMode", second["name"])
	assert.Equal(t, "default", second["source"])
}

func TestGetKnob(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, "GET", "/api/v1/knobs/DebugMode", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "default", data["source"])
	raw, err := hex.DecodeString(data["value"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, raw)

	w = doRequest(t, router, "GET", "/api/v1/knobs/Nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
