package storage

import (
	"context"
	"sync/atomic"
	"time"

	"skyhub/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverStore degrades from the configured backend to a fallback (memory)
// when the backend starts failing, and probes it again after a minute.
type FailoverStore struct {
	primary   domain.SnapshotStore
	fallback  domain.SnapshotStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStore(primary, fallback domain.SnapshotStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.primaryUsable() {
		data, err := s.primary.Load(ctx, key)
		if err == nil || err == ErrNoSnapshot {
			s.markUp()
			return data, err
		}
		s.markDown(err)
	}
	return s.fallback.Load(ctx, key)
}

func (s *FailoverStore) Save(ctx context.Context, key string, data []byte) error {
	// Always mirror into the fallback so a failover later still sees state.
	_ = s.fallback.Save(ctx, key, data)

	if s.primaryUsable() {
		err := s.primary.Save(ctx, key, data)
		if err == nil {
			s.markUp()
			return nil
		}
		s.markDown(err)
	}
	return nil
}

func (s *FailoverStore) Delete(ctx context.Context, key string) error {
	_ = s.fallback.Delete(ctx, key)

	if s.primaryUsable() {
		err := s.primary.Delete(ctx, key)
		if err == nil {
			s.markUp()
			return nil
		}
		s.markDown(err)
	}
	return nil
}

// primaryUsable reports whether the primary should be tried: either it is
// healthy, or it has been down for over a minute and deserves a new probe.
func (s *FailoverStore) primaryUsable() bool {
	if !s.isDown.Load() {
		return true
	}
	last := time.Unix(s.lastCheck.Load(), 0)
	return time.Since(last) > time.Minute
}

func (s *FailoverStore) markUp() {
	s.isDown.Store(false)
}

func (s *FailoverStore) markDown(err error) {
	if s.logger != nil {
		s.logger.Error().Err(err).Msg("Primary snapshot store failed, falling back to memory")
	}
	s.isDown.Store(true)
	s.lastCheck.Store(time.Now().Unix())
}
