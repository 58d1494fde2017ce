package rooms

import (
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/game/viewmodel"
)

type CommitResponse struct {
	Room       viewmodel.RoomView `json:"room"`
	Settled    bool               `json:"settled"`
	Settlement *game.Settlement   `json:"settlement,omitempty"`
}

type ListResponse struct {
	Items []viewmodel.RoomView `json:"items"`
	Limit int                  `json:"limit"`
}

type JackpotHashResponse struct {
	RoomID      uint64 `json:"room_id"`
	JackpotHash string `json:"jackpot_hash"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}
