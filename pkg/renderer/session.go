package renderer

import (
	"context"
	"errors"
	"sync"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// ErrSessionClosed is returned by Trigger after Close
var ErrSessionClosed = errors.New("renderer: session closed")

// RenderJob produces a frame, stopping early when ctx is cancelled
type RenderJob func(ctx context.Context) (*Framebuffer, error)

// Session runs at most one render at a time. Triggering a new job cancels the
// one in flight, so the latest request always wins.
type Session struct {
	mu         sync.Mutex
	parent     context.Context
	cancel     context.CancelFunc
	generation int
	latest     *Framebuffer
	closed     bool
	wg         sync.WaitGroup
	logger     core.Logger
}

// NewSession creates a session whose jobs are derived from ctx
func NewSession(ctx context.Context, logger core.Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Session{parent: ctx, logger: logger}
}

// Trigger cancels any in-flight job and starts job in the background.
// It returns the generation assigned to job (0 once the session is closed) and a
// channel that yields the job's error (nil on success) before closing.
func (s *Session) Trigger(job RenderJob) (int, <-chan error) {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrSessionClosed
		close(done)
		return 0, done
	}
	if s.cancel != nil {
		s.cancel()
		s.logger.Printf("Cancelling render %d\n", s.generation)
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.generation++
	generation := s.generation
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer close(done)

		fb, err := job(ctx)

		s.mu.Lock()
		// Only the most recent job may publish a frame
		if err == nil && fb != nil && generation == s.generation {
			s.latest = fb
		}
		if generation == s.generation {
			cancel()
			s.cancel = nil
		}
		s.mu.Unlock()

		done <- err
	}()

	return generation, done
}

// Latest returns the last frame completed by the most recent job, or nil
func (s *Session) Latest() *Framebuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Generation returns the number of jobs triggered so far
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Wait blocks until every triggered job has returned
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels the running job, rejects new ones and waits for shutdown
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
