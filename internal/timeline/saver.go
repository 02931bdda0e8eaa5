package timeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelinetracker/backend/internal/models"
)

// saver writes documents in the background. Only the newest pending
// document is kept, so a burst of edits ends in one or two writes.
type saver struct {
	store   Store
	userID  string
	timeout time.Duration
	logger  zerolog.Logger
	onError func(error)

	mu      sync.Mutex
	pending *models.Document
	busy    bool
	closed  bool
	waiters []chan struct{}
	wake    chan struct{}
	done    chan struct{}
}

func newSaver(store Store, userID string, timeout time.Duration, logger zerolog.Logger, onError func(error)) *saver {
	s := &saver{
		store:   store,
		userID:  userID,
		timeout: timeout,
		logger:  logger,
		onError: onError,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *saver) schedule(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &doc
	s.busy = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// discard drops a save that has not started yet.
func (s *saver) discard() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *saver) run() {
	defer close(s.done)
	for range s.wake {
		for {
			s.mu.Lock()
			doc := s.pending
			s.pending = nil
			if doc == nil {
				s.busy = false
				for _, w := range s.waiters {
					close(w)
				}
				s.waiters = nil
				s.mu.Unlock()
				break
			}
			s.mu.Unlock()
			s.save(*doc)
		}
	}
}

func (s *saver) save(doc models.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	location, err := s.store.Save(ctx, s.userID, doc)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", s.userID).Msg("failed to save timeline")
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.logger.Debug().
		Str("user_id", s.userID).
		Str("location", location).
		Int("tickets", len(doc.Tickets)).
		Dur("latency", time.Since(start)).
		Msg("timeline saved")
}

// flush blocks until every scheduled save has finished.
func (s *saver) flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.busy {
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close finishes pending work and stops the goroutine.
func (s *saver) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()
	<-s.done
}
