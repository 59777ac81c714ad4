package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/VisaTrek/visa-trek-backend/config"
	"github.com/VisaTrek/visa-trek-backend/handlers"
	"github.com/VisaTrek/visa-trek-backend/internal/store/memory"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/models"
	"github.com/VisaTrek/visa-trek-backend/router"
	"github.com/VisaTrek/visa-trek-backend/rules"
	"github.com/VisaTrek/visa-trek-backend/services"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pdfContent carries the %PDF magic so content sniffing sees a real PDF.
var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF")

type testEnv struct {
	router        *gin.Engine
	appModel      *models.ApplicationModel
	extractionSvc *services.ExtractionService
}

type fakeCountryClient struct{}

func (f *fakeCountryClient) FetchCountries(_ context.Context) ([]types.Country, error) {
	return []types.Country{
		{Name: "France", Alpha2: "FR", Alpha3: "FRA"},
		{Name: "United Kingdom", Alpha2: "GB", Alpha3: "GBR"},
	}, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithTripsBackend(t, "")
}

func newTestEnvWithTripsBackend(t *testing.T, tripsURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.IsTest = true

	engine := rules.NewDefaultEngine().WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	})
	appModel := models.NewApplicationModel(engine, memory.New())

	extractionSvc := services.NewExtractionService(appModel, 5*time.Millisecond)
	t.Cleanup(extractionSvc.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Environment:    config.EnvDevelopment,
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
	}

	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		HealthHandler:      handlers.NewHealthHandler(services.NewHealthService(nil, "test")),
		CountryHandler:     handlers.NewCountryHandler(services.NewCountryService(&fakeCountryClient{}, nil)),
		ApplicationHandler: handlers.NewApplicationHandler(appModel),
		TripHandler:        handlers.NewTripHandler(appModel, services.NewTripSyncService(tripsURL)),
		ChecklistHandler:   handlers.NewChecklistHandler(appModel),
		UploadHandler:      handlers.NewUploadHandler(appModel, services.NewUploadService(0), extractionSvc),
		MappingHandler:     handlers.NewMappingHandler(appModel),
		Logger:             logger.GetLogger(),
	})

	return &testEnv{router: r, appModel: appModel, extractionSvc: extractionSvc}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createApplication(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/applications", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func (e *testEnv) uploadFile(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health/liveness", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var health types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, "in-memory store", health.Components["store"].Details)
}

func TestListCountries(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Countries []types.Country `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Countries, 2)
	assert.Equal(t, "FR", resp.Countries[0].Alpha2)
}

func TestCreateAndListApplications(t *testing.T) {
	env := newTestEnv(t)

	id := env.createApplication(t)

	w := env.do(t, http.MethodGet, "/v1/applications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Applications []types.ApplicationMeta `json:"applications"`
		CurrentAppID string                  `json:"currentAppId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, id, resp.Applications[0].ID)
	assert.Equal(t, id, resp.CurrentAppID)
}

func TestCurrentWithoutApplicationConflicts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/applications/current", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTripPatchCascadesToChecklist(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	w := env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"destinationCountryAlpha2": "GB",
		"dates":                    map[string]string{"from": "2025-06-01", "to": "2025-06-30"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot types.WorkingState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	require.NotNil(t, snapshot.Trip)
	assert.Equal(t, types.VisaAreaUK, snapshot.Trip.Destination)
	assert.NotEmpty(t, snapshot.Checklist)

	// Due dates anchor on the trip end date minus each rule's lead time.
	for _, item := range snapshot.Checklist {
		if item.ID == "passport_bio_scan" {
			assert.Equal(t, "2025-06-02", item.DueDate)
		}
	}
}

func TestTripSyncWaitsForFullySpecifiedTrip(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []map[string]interface{}
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		calls = append(calls, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	env := newTestEnvWithTripsBackend(t, backend.URL)
	env.createApplication(t)

	syncCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(calls)
	}

	// Purpose alone leaves destination and dates empty: no sync.
	w := env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"purpose": "Business",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Destination without dates is still incomplete.
	w = env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"destinationCountryAlpha2": "GB",
	})
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, syncCount())

	// Dates complete the trip: exactly one sync goes out.
	w = env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"dates": map[string]string{"from": "2025-06-01", "to": "2025-06-30"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool { return syncCount() == 1 },
		time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "GB", calls[0]["destination"])
	assert.Equal(t, "Business", calls[0]["purpose"])
	mu.Unlock()

	// A later patch to the already-synced trip stays local.
	w = env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"dates": map[string]string{"from": "2025-06-05", "to": "2025-06-30"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, syncCount())
}

func TestTripPatchInvalidPurposeRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	w := env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"purpose": "Smuggling",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTripPatchWithoutApplicationConflicts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"destinationCountryAlpha2": "GB",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChecklistToggleUpdatesProgress(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	w := env.do(t, http.MethodPatch, "/v1/trip", map[string]interface{}{
		"destinationCountryAlpha2": "US",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/checklist", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var checklistResp struct {
		Checklist   []types.ChecklistItem `json:"checklist"`
		ProgressPct int                   `json:"progressPct"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checklistResp))
	require.Len(t, checklistResp.Checklist, 4)
	assert.Equal(t, 0, checklistResp.ProgressPct)

	w = env.do(t, http.MethodPost, "/v1/checklist/ds160/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/v1/checklist", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checklistResp))
	assert.Equal(t, 25, checklistResp.ProgressPct)
}

func TestUploadFlowThroughExtraction(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	w := env.uploadFile(t, "passport.pdf", pdfContent)
	require.Equal(t, http.StatusCreated, w.Code)

	var meta types.UploadMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "application/pdf", meta.MimeType)
	assert.Equal(t, types.UploadStatusUploaded, meta.Status)

	w = env.do(t, http.MethodGet, "/v1/uploads", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var uploadsResp struct {
		Uploads []types.UploadMeta `json:"uploads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploadsResp))
	require.Len(t, uploadsResp.Uploads, 1)

	// Extraction lands after the simulated processing delay.
	assert.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, "/v1/extraction", nil)
		var resp struct {
			Ready bool `json:"ready"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		return resp.Ready
	}, time.Second, 5*time.Millisecond)

	w = env.do(t, http.MethodGet, "/v1/extraction", nil)
	var extractionResp struct {
		Extraction types.ExtractionResult `json:"extraction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &extractionResp))
	assert.Equal(t, "WONG Ka Ming", extractionResp.Extraction.FullName)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	zipContent := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	w := env.uploadFile(t, "archive.zip", zipContent)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUploadWithoutApplicationConflicts(t *testing.T) {
	env := newTestEnv(t)

	w := env.uploadFile(t, "passport.pdf", pdfContent)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMappingOverrideWinsOverExtractedValue(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)

	env.uploadFile(t, "passport.pdf", pdfContent)

	assert.Eventually(t, func() bool {
		w := env.do(t, http.MethodGet, "/v1/mapping", nil)
		var resp struct {
			Mapping []types.MappingItem `json:"mapping"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		return len(resp.Mapping) > 0
	}, time.Second, 5*time.Millisecond)

	w := env.do(t, http.MethodPut, "/v1/mapping/passport_number", map[string]string{
		"value": "Z1111111",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Mapping []types.MappingItem `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	found := false
	for _, item := range resp.Mapping {
		if item.FormField == "passport_number" {
			found = true
			assert.Equal(t, "Z1111111", item.Value)
		}
	}
	assert.True(t, found)
}

func TestDuplicateAndDeleteApplication(t *testing.T) {
	env := newTestEnv(t)
	id := env.createApplication(t)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/v1/applications/%s/duplicate", id), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var dupResp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dupResp))
	assert.NotEqual(t, id, dupResp.ID)

	// The clone does not become current.
	assert.Equal(t, id, env.appModel.CurrentAppID())

	w = env.do(t, http.MethodDelete, "/v1/applications/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/applications/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivateUnknownApplicationNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/applications/no-such-id/activate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearTearsDownEverything(t *testing.T) {
	env := newTestEnv(t)
	env.createApplication(t)
	env.createApplication(t)

	w := env.do(t, http.MethodPost, "/v1/applications/clear", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/applications", nil)
	var resp struct {
		Applications []types.ApplicationMeta `json:"applications"`
		CurrentAppID string                  `json:"currentAppId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Applications)
	assert.Empty(t, resp.CurrentAppID)
}
