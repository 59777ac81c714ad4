package services

import (
	"sync"
	"testing"
	"time"

	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu         sync.Mutex
	extraction map[string]types.ExtractionResult
	mapping    map[string][]types.MappingItem
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		extraction: make(map[string]types.ExtractionResult),
		mapping:    make(map[string][]types.MappingItem),
	}
}

func (r *recordingSink) SetExtractionFor(appID string, result types.ExtractionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extraction[appID] = result
}

func (r *recordingSink) SetMappingFor(appID string, mapping []types.MappingItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping[appID] = mapping
}

func (r *recordingSink) delivered(appID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.extraction[appID]
	return ok
}

func TestStartExtractionDeliversAfterDelay(t *testing.T) {
	sink := newRecordingSink()
	svc := NewExtractionService(sink, 5*time.Millisecond)
	defer svc.Close()

	upload := types.UploadMeta{ID: "u1", Filename: "passport.pdf"}
	svc.StartExtraction("app-1", upload)

	assert.Eventually(t, func() bool { return sink.delivered("app-1") },
		time.Second, time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "WONG Ka Ming", sink.extraction["app-1"].FullName)
	assert.Len(t, sink.mapping["app-1"], 12)
}

func TestCloseStopsPendingDeliveries(t *testing.T) {
	sink := newRecordingSink()
	svc := NewExtractionService(sink, 50*time.Millisecond)

	svc.StartExtraction("app-1", types.UploadMeta{ID: "u1"})
	svc.Close()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, sink.delivered("app-1"))
}

func TestStartExtractionAfterCloseIsNoop(t *testing.T) {
	sink := newRecordingSink()
	svc := NewExtractionService(sink, time.Millisecond)
	svc.Close()

	svc.StartExtraction("app-1", types.UploadMeta{ID: "u1"})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, sink.delivered("app-1"))
}
