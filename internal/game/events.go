package game

const (
	EventRoomCreated      = "room_created"
	EventRoomJoined       = "room_joined"
	EventHandCommitted    = "hand_committed"
	EventBothCommitted    = "both_committed"
	EventHandRevealed     = "hand_revealed"
	EventParityWinner     = "parity_winner"
	EventClosenessWinner  = "closeness_winner"
	EventRoundDraw        = "round_draw"
	EventJackpotWon       = "jackpot_won"
	EventJackpotSplit     = "jackpot_split"
	EventTimeoutClaimed   = "timeout_claimed"
	EventRoomCancelled    = "room_cancelled"
	EventRoomReset        = "room_reset"
	EventRoomClosed       = "room_closed"
	EventSettingsChanged  = "settings_changed"
	EventTimeoutAvailable = "timeout_available"

	EventHubStartGame = "hub_start_game"
	EventHubEndGame   = "hub_end_game"
)

type Event struct {
	Type   string `json:"type"`
	RoomID uint64 `json:"room_id,omitempty"`
	Ledger uint32 `json:"ledger"`
	Data   any    `json:"data,omitempty"`
}

type RoomCreated struct {
	Player    string `json:"player"`
	BetAmount int64  `json:"bet_amount"`
}

type RoomJoined struct {
	Player string `json:"player"`
	Seat   int    `json:"seat"`
	Status Status `json:"status"`
}

type HandCommitted struct {
	Player     string `json:"player"`
	Commitment string `json:"commitment"`
}

type HandRevealed struct {
	Player     string `json:"player"`
	Hand       uint8  `json:"hand"`
	Parity     uint8  `json:"parity"`
	TotalGuess uint8  `json:"total_guess"`
	JackpotHit bool   `json:"jackpot_hit"`
}

type RoundResult struct {
	Winner       string `json:"winner,omitempty"`
	TotalFingers uint8  `json:"total_fingers"`
	ActualParity uint8  `json:"actual_parity"`
	Payout       int64  `json:"payout"`
	Rake         int64  `json:"rake"`
}

type JackpotResult struct {
	Winner string `json:"winner,omitempty"`
	Amount int64  `json:"amount"`
}

type TimeoutClaimed struct {
	Claimer string `json:"claimer"`
	Amount  int64  `json:"amount"`
}

type RoomCancelled struct {
	Player string `json:"player"`
	Refund int64  `json:"refund"`
}

type RoomReset struct {
	JackpotPool  int64  `json:"jackpot_pool"`
	JackpotHash  string `json:"jackpot_hash"`
	RoundsPlayed uint32 `json:"rounds_played"`
}

type TimeoutAvailable struct {
	Claimant     string `json:"claimant"`
	DeadlineSeq  uint32 `json:"deadline_ledger"`
	RoundsPlayed uint32 `json:"rounds_played"`
}

// HubStartGame and HubEndGame are the notifications owed to the game hub.
type HubStartGame struct {
	Hub           string `json:"hub"`
	SessionID     uint32 `json:"session_id"`
	Player1       string `json:"player1"`
	Player2       string `json:"player2"`
	Player1Points int64  `json:"player1_points"`
	Player2Points int64  `json:"player2_points"`
}

type HubEndGame struct {
	Hub        string `json:"hub"`
	SessionID  uint32 `json:"session_id"`
	Player1Won bool   `json:"player1_won"`
	Round      uint32 `json:"round"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
