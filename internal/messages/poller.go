package messages

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/studybuddy/pkg/models"
)

// DefaultPollInterval is how often screens re-fetch their state.
const DefaultPollInterval = time.Second

// FetchFunc is one refresh of a screen's state.
type FetchFunc func(ctx context.Context) error

// Poller runs a FetchFunc immediately and then on every tick until its context is cancelled
// or Stop is called. A failing fetch is logged and the next tick runs as usual.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	logger   *slog.Logger
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func NewPoller(interval time.Duration, fetch FetchFunc, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{interval: interval, fetch: fetch, logger: logger, stop: make(chan struct{})}
}

// Start launches the polling goroutine.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop signals the poller to stop and waits for an in-flight fetch to return.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("poll fetch failed", "err", err)
		}

		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// HistoryPoller polls the history of chatID and passes every snapshot to deliver.
func (l *Log) HistoryPoller(chatID int64, interval time.Duration, deliver func([]models.ChatMessage)) *Poller {
	return NewPoller(interval, func(ctx context.Context) error {
		msgs, err := l.History(ctx, chatID)
		if err != nil {
			return err
		}
		deliver(msgs)
		return nil
	}, l.logger)
}
