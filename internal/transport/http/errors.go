package httptransport

import (
	"errors"
	"net/http"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/commitment"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/ledger"
)

type errorMapping struct {
	err    error
	status int
}

// errorTable is checked in order; the error's text is the response code.
var errorTable = []errorMapping{
	{game.ErrRoomNotFound, http.StatusNotFound},
	{game.ErrAccountNotFound, http.StatusNotFound},
	{game.ErrNotPlayer, http.StatusForbidden},
	{game.ErrUnauthorized, http.StatusForbidden},
	{game.ErrInvalidPhase, http.StatusConflict},
	{game.ErrAlreadyCommitted, http.StatusConflict},
	{game.ErrAlreadyInitialized, http.StatusConflict},
	{game.ErrTimeoutNotReached, http.StatusConflict},
	{game.ErrInvalidProof, http.StatusUnprocessableEntity},
	{game.ErrCommitmentMismatch, http.StatusUnprocessableEntity},
	{game.ErrInvalidHandValue, http.StatusBadRequest},
	{game.ErrInvalidGuess, http.StatusBadRequest},
	{game.ErrSelfPlayForbidden, http.StatusBadRequest},
	{game.ErrInvalidBet, http.StatusBadRequest},
	{game.ErrInsufficientFunds, http.StatusBadRequest},
	{game.ErrAmountOverflow, http.StatusBadRequest},
	{game.ErrInvalidRequest, http.StatusBadRequest},
	{game.ErrXLMTokenNotSet, http.StatusPreconditionFailed},
	{game.ErrGameHubNotSet, http.StatusPreconditionFailed},
	{game.ErrVerifierNotSet, http.StatusPreconditionFailed},
	{game.ErrAdminNotSet, http.StatusPreconditionFailed},
	{commitment.ErrInvalidSalt, http.StatusBadRequest},
	{ledger.ErrInvalidAmount, http.StatusBadRequest},
	{rooms.ErrInvalidRequest, http.StatusBadRequest},
	{players.ErrInvalidRequest, http.StatusBadRequest},
	{players.ErrInvalidAmount, http.StatusBadRequest},
	{players.ErrUnknownAPIKey, http.StatusUnauthorized},
}

// MapError converts a service error into an HTTP status and error code.
func MapError(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := MapError(err)
	if status == http.StatusInternalServerError {
		logInternalError(r, err)
	}
	WriteHTTPError(w, status, code)
}
