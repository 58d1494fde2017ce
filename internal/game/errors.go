package game

import (
	"errors"

	"zk-porrinha/internal/commitment"
)

var (
	ErrRoomNotFound       = errors.New("room_not_found")
	ErrNotPlayer          = errors.New("not_player")
	ErrInvalidPhase       = errors.New("invalid_phase")
	ErrAlreadyCommitted   = errors.New("already_committed")
	ErrInvalidProof       = errors.New("invalid_proof")
	ErrSelfPlayForbidden  = errors.New("self_play_forbidden")
	ErrInvalidBet         = errors.New("invalid_bet")
	ErrTimeoutNotReached  = errors.New("timeout_not_reached")
	ErrAlreadyInitialized = errors.New("already_initialized")
	ErrInvalidHandValue   = commitment.ErrInvalidHandValue
	ErrInvalidGuess       = commitment.ErrInvalidGuess
	ErrCommitmentMismatch = errors.New("commitment_mismatch")
	ErrXLMTokenNotSet     = errors.New("xlm_token_not_set")
	ErrGameHubNotSet      = errors.New("game_hub_not_set")
	ErrVerifierNotSet     = errors.New("verifier_not_set")
	ErrAdminNotSet        = errors.New("admin_not_set")

	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrAmountOverflow    = errors.New("amount_overflow")
	ErrAccountNotFound   = errors.New("account_not_found")
	ErrInvalidRequest    = errors.New("invalid_request")
)
