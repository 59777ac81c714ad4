package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
)

// TripSyncRequest is the create-trip payload forwarded to the external trips
// backend.
type TripSyncRequest struct {
	Nationality string          `json:"nationality"`
	Destination string          `json:"destination"`
	Purpose     string          `json:"purpose"`
	Dates       types.DateRange `json:"dates"`
	// UserID is the traveler's identity at the trips backend. Optional;
	// anonymous wizard sessions send it empty.
	UserID string `json:"userId,omitempty"`
}

// TripSyncService forwards trip selections to the external trips backend.
// The sync is fire-and-forget: the wizard's own state transitions never gate
// on it, and failures only surface as log lines. A trip is posted at most
// once per application, and only once it is fully specified; partial trips
// never leave the wizard.
type TripSyncService struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	mu     sync.Mutex
	synced map[string]bool
}

func NewTripSyncService(baseURL string) *TripSyncService {
	return &TripSyncService{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
		synced:     make(map[string]bool),
	}
}

// Enabled reports whether a backend URL is configured. Without one, syncing
// is skipped entirely and the wizard runs standalone.
func (s *TripSyncService) Enabled() bool {
	return s.baseURL != ""
}

// SyncTrip posts the trip to the backend in the background. Incomplete trips
// and applications whose trip already synced are skipped; a failed post is
// retried on the next call.
func (s *TripSyncService) SyncTrip(appID, userID string, trip types.TripSelections) {
	if !s.Enabled() || !trip.IsFullySpecified() {
		return
	}

	s.mu.Lock()
	alreadySynced := s.synced[appID]
	s.mu.Unlock()
	if alreadySynced {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.postTrip(ctx, userID, trip); err != nil {
			logger.GetLogger().Warnw("Trip sync failed",
				"applicationId", appID,
				"destination", trip.DestinationCountryAlpha2,
				"error", err,
			)
			return
		}

		s.mu.Lock()
		s.synced[appID] = true
		s.mu.Unlock()
		logger.GetLogger().Infow("Trip synced to backend", "applicationId", appID)
	}()
}

func (s *TripSyncService) postTrip(ctx context.Context, userID string, trip types.TripSelections) error {
	payload := TripSyncRequest{
		Nationality: trip.NationalityCode,
		Destination: trip.DestinationCountryAlpha2,
		Purpose:     string(trip.Purpose),
		Dates:       trip.Dates,
		UserID:      userID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal trip payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/trips", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create trip request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute trip request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("trips backend returned status: %d", resp.StatusCode)
	}
	return nil
}
