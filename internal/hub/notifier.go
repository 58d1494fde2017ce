// Package hub forwards game start/end notifications to the external game hub.
package hub

import (
	"context"
	"sync"
	"time"

	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

type Notifier struct {
	cfg    Config
	sender Sender

	dispatchCh chan job
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

func NewNotifier(cfg Config) *Notifier {
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpen <= 0 {
		cfg.CircuitOpen = 30 * time.Second
	}
	n := &Notifier{
		cfg:          cfg,
		sender:       NewHTTPSender(cfg.RequestTimeout),
		dispatchCh:   make(chan job, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	n.retryQ = newRetryQueue(n.dispatchCh, n.done)
	return n
}

// WithSender replaces the HTTP sender. Call before Start.
func (n *Notifier) WithSender(s Sender) *Notifier {
	n.sender = s
	return n
}

func (n *Notifier) Enabled() bool {
	return n.cfg.Enabled && n.cfg.Endpoint != ""
}

func (n *Notifier) Start(ctx context.Context) error {
	if !n.Enabled() {
		return nil
	}
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return nil
	}
	n.started = true
	n.mu.Unlock()

	for i := 0; i < n.cfg.Workers; i++ {
		go n.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(n.done)
	}()
	return nil
}

// Sink is an events.Sink. It never blocks the publisher: a full queue drops
// the notification.
func (n *Notifier) Sink(ev events.StreamEvent) {
	if !n.Enabled() {
		return
	}
	body, ok := notificationFor(ev)
	if !ok {
		return
	}
	if !n.enqueue(job{Endpoint: n.cfg.Endpoint, Body: body}) {
		metricHubDroppedTotal.Add(1)
	}
}

func (n *Notifier) enqueue(j job) bool {
	select {
	case <-n.done:
		return false
	case n.dispatchCh <- j:
		metricHubQueuedTotal.Add(1)
		metricHubQueueLen.Set(int64(len(n.dispatchCh)))
		return true
	default:
		return false
	}
}

func notificationFor(ev events.StreamEvent) (Notification, bool) {
	switch ev.Event {
	case game.EventHubStartGame:
		d, ok := ev.Data.(game.HubStartGame)
		if !ok {
			return Notification{}, false
		}
		return Notification{
			Method:        MethodStartGame,
			EventID:       ev.EventID,
			Hub:           d.Hub,
			SessionID:     d.SessionID,
			Player1:       d.Player1,
			Player2:       d.Player2,
			Player1Points: d.Player1Points,
			Player2Points: d.Player2Points,
		}, true
	case game.EventHubEndGame:
		d, ok := ev.Data.(game.HubEndGame)
		if !ok {
			return Notification{}, false
		}
		won := d.Player1Won
		return Notification{
			Method:     MethodEndGame,
			EventID:    ev.EventID,
			Hub:        d.Hub,
			SessionID:  d.SessionID,
			Player1Won: &won,
			Round:      d.Round,
		}, true
	}
	return Notification{}, false
}
