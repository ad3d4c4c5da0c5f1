package services

import (
	"context"
	"incomify/internal/cache"
	"incomify/internal/ml"
	"incomify/internal/models"
	"log"
	"sync"
	"time"
)

const modelInfoTTL = 24 * time.Hour

// ModelInfoService lazily fetches and caches the upstream model metadata.
// The endpoint is non-critical: fetch failures are swallowed and callers see
// a nil info until a fetch succeeds. Two concurrent first fetches may both
// hit the upstream; the GET is idempotent and the last store wins, so the
// window is accepted rather than guarded.
type ModelInfoService struct {
	client ml.MLClient
	cache  *cache.RedisClient // optional, may be nil

	mu   sync.RWMutex
	info *models.ModelInfo
}

func NewModelInfoService(client ml.MLClient, redisCache *cache.RedisClient) *ModelInfoService {
	return &ModelInfoService{
		client: client,
		cache:  redisCache,
	}
}

// Get returns the cached model info, fetching it on first use. A nil return
// means the info is not available yet; no error is surfaced.
func (s *ModelInfoService) Get(ctx context.Context) *models.ModelInfo {
	s.mu.RLock()
	info := s.info
	s.mu.RUnlock()
	if info != nil {
		return info
	}

	// Another instance may have cached it already.
	if s.cache != nil {
		if cached, ok, err := s.cache.GetModelInfo(); err == nil && ok {
			s.store(cached)
			return cached
		}
	}

	fetched, err := s.client.FetchModelInfo(ctx)
	if err != nil {
		log.Printf("Model info fetch failed (non-critical): %v", err)
		return nil
	}

	s.store(fetched)

	if s.cache != nil {
		if err := s.cache.StoreModelInfo(fetched, modelInfoTTL); err != nil {
			log.Printf("Failed to cache model info in Redis: %v", err)
		}
	}

	return fetched
}

// Cached reports the in-memory value without triggering a fetch.
func (s *ModelInfoService) Cached() *models.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

func (s *ModelInfoService) store(info *models.ModelInfo) {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}
