package api

import (
	"context"
	"sync"
	"time"
)

// Streams ties websocket streams to the server's lifetime. http.Server.Shutdown does not
// track hijacked connections, so the server ends them through Shutdown and waits with Wait
// before releasing the store.
type Streams struct {
	// PingPeriod is how often a stream pings its client. A client that answers nothing within
	// PongWait is dropped. Set both before serving.
	PingPeriod time.Duration
	PongWait   time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStreams(parent context.Context) *Streams {
	ctx, cancel := context.WithCancel(parent)
	return &Streams{PingPeriod: 30 * time.Second, PongWait: 60 * time.Second, ctx: ctx, cancel: cancel}
}

// begin registers a new stream. It returns false once Shutdown has been called.
func (s *Streams) begin() (context.Context, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return nil, nil, false
	}
	s.wg.Add(1)
	return s.ctx, s.wg.Done, true
}

// Shutdown ends every open stream and refuses new ones. Suitable for
// http.Server.RegisterOnShutdown.
func (s *Streams) Shutdown() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}

// Wait blocks until every stream has finished or ctx is done.
func (s *Streams) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
