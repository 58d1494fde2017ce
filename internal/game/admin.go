package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Initialize stores the first settings and opens the escrow pool account. It
// can run only once.
func (e *Engine) Initialize(ctx context.Context, s Settings) error {
	s.Admin = strings.TrimSpace(s.Admin)
	if s.Admin == "" {
		return ErrAdminNotSet
	}
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		current, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if current.Initialized() {
			return ErrAlreadyInitialized
		}
		if s.Token != "" {
			if err := tx.EnsureAccount(ctx, s.Token, 0); err != nil {
				return err
			}
		}
		s.Version = 1
		if ac, ok := e.clock.(AnchoredClock); ok && s.LedgerGenesis.IsZero() {
			s.LedgerGenesis = ac.Genesis().UTC()
		}
		if err := tx.InitSettings(ctx, s); err != nil {
			return err
		}
		em.emit(EventSettingsChanged, 0, s)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("admin", s.Admin).Str("verifier", s.Verifier).Str("hub", s.Hub).Msg("game initialized")
	return nil
}

// RestoreLedgerTime moves an anchored clock onto the genesis stored with the
// settings, so stamps written by an earlier process stay comparable. Settings
// initialized without a genesis get the clock's current one. It is a no-op
// before Initialize and for clocks that are not anchored.
func (e *Engine) RestoreLedgerTime(ctx context.Context) error {
	ac, ok := e.clock.(AnchoredClock)
	if !ok {
		return nil
	}
	var stored time.Time
	err := e.registry.Update(ctx, func(tx RoomTx) error {
		s, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if !s.Initialized() {
			return nil
		}
		if s.LedgerGenesis.IsZero() {
			s.LedgerGenesis = ac.Genesis().UTC()
			if err := tx.PutSettings(ctx, s); err != nil {
				return err
			}
		}
		stored = s.LedgerGenesis
		return nil
	})
	if err != nil || stored.IsZero() {
		return err
	}
	ac.Resume(stored)
	log.Info().Time("genesis", stored).Uint32("sequence", ac.Sequence()).Msg("ledger time restored")
	return nil
}

func (e *Engine) Settings(ctx context.Context) (Settings, error) {
	return e.registry.Settings(ctx)
}

func (e *Engine) SetAdmin(ctx context.Context, caller, admin string) error {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return ErrAdminNotSet
	}
	return e.adminUpdate(ctx, caller, "admin", func(s *Settings) error {
		s.Admin = admin
		return nil
	})
}

// SetVerifier selects one of the verifiers the engine was built with.
func (e *Engine) SetVerifier(ctx context.Context, caller, verifier string) error {
	return e.adminUpdate(ctx, caller, "verifier", func(s *Settings) error {
		if !e.HasVerifier(verifier) {
			return ErrVerifierNotSet
		}
		s.Verifier = verifier
		return nil
	})
}

func (e *Engine) SetHub(ctx context.Context, caller, hub string) error {
	hub = strings.TrimSpace(hub)
	return e.adminUpdate(ctx, caller, "hub", func(s *Settings) error {
		if hub == "" {
			return ErrGameHubNotSet
		}
		s.Hub = hub
		return nil
	})
}

// Upgrade records the code hash of a new deployment and bumps the settings
// version.
func (e *Engine) Upgrade(ctx context.Context, caller, codeHash string) error {
	codeHash = strings.TrimSpace(codeHash)
	return e.adminUpdate(ctx, caller, "code_hash", func(s *Settings) error {
		if codeHash == "" {
			return ErrInvalidRequest
		}
		s.CodeHash = codeHash
		return nil
	})
}

func (e *Engine) adminUpdate(ctx context.Context, caller, field string, apply func(*Settings) error) error {
	var next Settings
	err := e.update(ctx, func(tx RoomTx, em *emitter) error {
		s, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if !s.Initialized() {
			return ErrAdminNotSet
		}
		if caller != s.Admin {
			return ErrUnauthorized
		}
		if err := apply(&s); err != nil {
			return err
		}
		s.Version++
		if err := tx.PutSettings(ctx, s); err != nil {
			return err
		}
		next = s
		em.emit(EventSettingsChanged, 0, s)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("field", field).Uint32("version", next.Version).Msg("settings updated")
	return nil
}
