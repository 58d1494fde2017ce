package hub

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var errCircuitOpen = errors.New("circuit_open")

func (n *Notifier) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case j := <-n.dispatchCh:
			metricHubQueueLen.Set(int64(len(n.dispatchCh)))
			n.processJob(ctx, j)
		}
	}
}

func (n *Notifier) processJob(ctx context.Context, j job) {
	if err := n.beforeSend(j.key(), time.Now()); err != nil {
		metricHubCircuitOpenTotal.Add(1)
		n.retryOrDrop(j, err)
		return
	}

	err := n.sender.Send(ctx, j.Endpoint, n.cfg.Secret, j.Body)
	if err != nil {
		metricHubFailedTotal.Add(1)
		n.afterFailure(j.key(), time.Now())
		n.retryOrDrop(j, err)
		return
	}

	metricHubSentTotal.Add(1)
	n.afterSuccess(j.key())
}

func (n *Notifier) retryOrDrop(j job, err error) bool {
	if j.Attempt >= n.cfg.RetryMax {
		metricHubRetryDroppedTotal.Add(1)
		log.Warn().Err(err).
			Str("method", j.Body.Method).
			Uint32("session_id", j.Body.SessionID).
			Int("attempts", j.Attempt+1).
			Msg("hub notification dropped")
		return false
	}
	j.Attempt++
	metricHubRetryTotal.Add(1)
	delay := n.cfg.RetryBase * time.Duration(1<<(j.Attempt-1))
	n.retryQ.Enqueue(j, delay)
	return true
}

func (n *Notifier) beforeSend(key string, now time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state := n.breakerByKey[key]
	if !state.openUntil.IsZero() && now.Before(state.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (n *Notifier) afterFailure(key string, now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state := n.breakerByKey[key]
	state.consecutiveFailures++
	if state.consecutiveFailures >= n.cfg.FailureThreshold {
		state.openUntil = now.Add(n.cfg.CircuitOpen)
		state.consecutiveFailures = 0
	}
	n.breakerByKey[key] = state
}

func (n *Notifier) afterSuccess(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.breakerByKey[key] = breakerState{}
}
