package rooms

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/game"
)

// StartJanitor periodically scans the most recent rooms and announces each
// stalled Commit round once per timeout window.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration, limit int) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx, limit); err != nil {
					metricJanitorSweepErrors.Add(1)
					log.Warn().Err(err).Msg("room janitor sweep failed")
				}
			}
		}
	}()
}

// Sweep publishes timeout_available for rooms whose window has elapsed and
// returns how many were announced.
func (s *Service) Sweep(ctx context.Context, limit int) (int, error) {
	rooms, err := s.engine.ListRecentRooms(ctx, limit)
	if err != nil {
		return 0, err
	}
	seq := uint64(s.engine.Sequence())
	announced := 0
	for _, room := range rooms {
		if room.Status != game.StatusCommit {
			s.forget(room.ID)
			continue
		}
		deadline := s.engine.TimeoutDeadline(room)
		if seq < deadline || !s.markAnnounced(room.ID, deadline) {
			continue
		}
		claimant, _ := game.TimeoutClaimant(room)
		if s.events != nil {
			s.events.Append(game.EventTimeoutAvailable, room.ID, uint32(seq), game.TimeoutAvailable{
				Claimant:     claimant,
				DeadlineSeq:  uint32(deadline),
				RoundsPlayed: room.RoundsPlayed,
			})
		}
		metricTimeoutsAnnounced.Add(1)
		announced++
	}
	return announced, nil
}

func (s *Service) markAnnounced(id, deadline uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.announced[id] == deadline {
		return false
	}
	s.announced[id] = deadline
	return true
}

func (s *Service) forget(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.announced, id)
}
