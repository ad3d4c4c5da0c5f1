package services

import (
	"errors"
	"incomify/internal/models"
	"incomify/internal/repository"
	"log"
	"sync"
)

// Recorder accepts completed predictions for persistence.
type Recorder interface {
	Record(record *models.PredictionRecord) error
}

// HistoryRecorder persists prediction history off the request path through a
// small worker pool, so a slow database never delays the prediction response.
type HistoryRecorder struct {
	repo repository.PredictionRepository

	queue       chan *models.PredictionRecord
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex
}

func NewHistoryRecorder(repo repository.PredictionRepository, workerCount int) *HistoryRecorder {
	if workerCount <= 0 {
		workerCount = 3 // Default worker count
	}

	return &HistoryRecorder{
		repo:        repo,
		queue:       make(chan *models.PredictionRecord, 100),
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (h *HistoryRecorder) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	for i := 0; i < h.workerCount; i++ {
		h.wg.Add(1)
		go h.worker(i)
	}
}

func (h *HistoryRecorder) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.stopChan)
	h.wg.Wait()
}

// Record queues a record for persistence. It never blocks: when the queue is
// full the record is dropped with an error, since history is best-effort
// relative to serving the prediction itself.
func (h *HistoryRecorder) Record(record *models.PredictionRecord) error {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return errors.New("history recorder is not running")
	}

	select {
	case h.queue <- record:
		return nil
	default:
		return errors.New("history queue is full")
	}
}

func (h *HistoryRecorder) worker(id int) {
	defer h.wg.Done()

	for {
		select {
		case record := <-h.queue:
			if err := h.repo.SaveRecord(record); err != nil {
				log.Printf("History worker %d: failed to save record for session %s: %v", id, record.SessionID, err)
			}
		case <-h.stopChan:
			// Drain whatever is left before exiting.
			for {
				select {
				case record := <-h.queue:
					if err := h.repo.SaveRecord(record); err != nil {
						log.Printf("History worker %d: failed to save record for session %s: %v", id, record.SessionID, err)
					}
				default:
					return
				}
			}
		}
	}
}

// GetStatus reports the recorder state for the debug endpoints.
func (h *HistoryRecorder) GetStatus() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"running": h.running,
		"workers": h.workerCount,
		"queued":  len(h.queue),
	}
}
