package players

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrUnknownAPIKey  = errors.New("unknown_api_key")
)
