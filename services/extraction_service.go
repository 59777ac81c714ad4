package services

import (
	"sync"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
)

// ExtractionSink receives pipeline output. Both setters carry the id of the
// application the pipeline was started for, so the sink can drop deliveries
// that arrive after the user moved to a different application.
type ExtractionSink interface {
	SetExtractionFor(appID string, result types.ExtractionResult)
	SetMappingFor(appID string, mapping []types.MappingItem)
}

// ExtractionService simulates the document OCR pipeline: after a fixed
// processing delay it delivers the demo extraction record and field mapping
// for the uploaded document.
type ExtractionService struct {
	sink  ExtractionSink
	delay time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func NewExtractionService(sink ExtractionSink, delay time.Duration) *ExtractionService {
	return &ExtractionService{
		sink:   sink,
		delay:  delay,
		timers: make(map[*time.Timer]struct{}),
	}
}

// StartExtraction schedules delivery of the extraction result for the given
// application and upload. Returns immediately; the caller's state transitions
// never wait on the pipeline.
func (s *ExtractionService) StartExtraction(appID string, upload types.UploadMeta) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	log := logger.GetLogger()
	log.Infow("Extraction started",
		"applicationId", appID,
		"uploadId", upload.ID,
		"filename", upload.Filename,
	)

	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}

		result := DemoExtraction()
		s.sink.SetExtractionFor(appID, result)
		s.sink.SetMappingFor(appID, DemoMapping())

		log.Infow("Extraction delivered",
			"applicationId", appID,
			"uploadId", upload.ID,
			"passportNumber", logger.MaskSensitiveString(result.PassportNumber, 1, 2),
		)
	})
	s.timers[timer] = struct{}{}
	s.mu.Unlock()
}

// Close stops all outstanding deliveries. Used on shutdown so late timers do
// not fire into a torn-down model.
func (s *ExtractionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}
