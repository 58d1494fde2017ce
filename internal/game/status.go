package game

import "fmt"

// Status is the room phase. Lobby -> Commit -> Settled, with Settled/timeout
// looping back to Lobby while a jackpot pool is held.
type Status string

const (
	StatusLobby   Status = "lobby"
	StatusCommit  Status = "commit"
	StatusSettled Status = "settled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusLobby:
		return StatusLobby, nil
	case StatusCommit:
		return StatusCommit, nil
	case StatusSettled:
		return StatusSettled, nil
	}
	return "", fmt.Errorf("unknown room status %q", s)
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
