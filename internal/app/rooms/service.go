package rooms

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/game/viewmodel"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	defaultCacheSize = 1024
)

// Service exposes room operations as views. Reads go through an LRU of
// decoded rooms that is invalidated by every event naming the room.
type Service struct {
	engine *game.Engine
	events *events.Buffer
	cache  *lru.Cache

	// epoch counts invalidations. A read that raced one does not fill the
	// cache, since what it fetched may predate the change.
	cacheMu sync.Mutex
	epoch   uint64

	mu        sync.Mutex
	announced map[uint64]uint64
}

func NewService(engine *game.Engine, buf *events.Buffer, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Service{
		engine:    engine,
		events:    buf,
		cache:     cache,
		announced: map[uint64]uint64{},
	}
	if buf != nil {
		buf.AddSink(s.invalidate)
	}
	return s, nil
}

func (s *Service) invalidate(ev events.StreamEvent) {
	if ev.RoomID != 0 {
		s.evict(ev.RoomID)
	}
}

func (s *Service) evict(id uint64) {
	s.cacheMu.Lock()
	s.epoch++
	s.cache.Remove(id)
	s.cacheMu.Unlock()
}

func (s *Service) room(ctx context.Context, id uint64) (*game.Room, error) {
	if v, ok := s.cache.Get(id); ok {
		metricRoomCacheHits.Add(1)
		return v.(*game.Room), nil
	}
	metricRoomCacheMisses.Add(1)
	s.cacheMu.Lock()
	seen := s.epoch
	s.cacheMu.Unlock()

	room, err := s.engine.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	if s.epoch == seen {
		s.cache.Add(id, room)
	} else {
		metricRoomCacheRaces.Add(1)
	}
	s.cacheMu.Unlock()
	return room, nil
}

func (s *Service) view(ctx context.Context, id uint64, viewer string) (viewmodel.RoomView, error) {
	room, err := s.room(ctx, id)
	if err != nil {
		return viewmodel.RoomView{}, err
	}
	return viewmodel.BuildRoomView(room, s.engine.TimeoutLedgers(), viewer), nil
}

func (s *Service) Create(ctx context.Context, player string, bet int64) (viewmodel.RoomView, error) {
	id, err := s.engine.CreateRoom(ctx, player, bet)
	if err != nil {
		return viewmodel.RoomView{}, err
	}
	return s.view(ctx, id, player)
}

func (s *Service) Join(ctx context.Context, id uint64, player string, bet int64) (viewmodel.RoomView, error) {
	if err := s.engine.JoinRoom(ctx, id, player, bet); err != nil {
		return viewmodel.RoomView{}, err
	}
	s.evict(id)
	return s.view(ctx, id, player)
}

func (s *Service) Commit(ctx context.Context, req game.CommitRequest) (*CommitResponse, error) {
	res, err := s.engine.CommitHand(ctx, req)
	if err != nil {
		return nil, err
	}
	s.evict(req.RoomID)
	return &CommitResponse{
		Room:       viewmodel.BuildRoomView(res.Room, s.engine.TimeoutLedgers(), req.Player),
		Settled:    res.Settled,
		Settlement: res.Settlement,
	}, nil
}

func (s *Service) ClaimTimeout(ctx context.Context, id uint64, player string) (viewmodel.RoomView, error) {
	if err := s.engine.ClaimTimeout(ctx, id, player); err != nil {
		return viewmodel.RoomView{}, err
	}
	s.evict(id)
	return s.view(ctx, id, player)
}

func (s *Service) Cancel(ctx context.Context, id uint64, player string) (viewmodel.RoomView, error) {
	if err := s.engine.CancelRoom(ctx, id, player); err != nil {
		return viewmodel.RoomView{}, err
	}
	s.evict(id)
	return s.view(ctx, id, player)
}

// Get returns the room as seen by viewer; an empty viewer gets the
// spectator view.
func (s *Service) Get(ctx context.Context, id uint64, viewer string) (viewmodel.RoomView, error) {
	return s.view(ctx, id, viewer)
}

func (s *Service) JackpotHash(ctx context.Context, id uint64) (*JackpotHashResponse, error) {
	h, err := s.engine.GetJackpotHash(ctx, id)
	if err != nil {
		return nil, err
	}
	return &JackpotHashResponse{RoomID: id, JackpotHash: h.String()}, nil
}

func (s *Service) Count(ctx context.Context) (*CountResponse, error) {
	n, err := s.engine.GetRoomCount(ctx)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: n}, nil
}

func (s *Service) List(ctx context.Context, limit int, viewer string) (*ListResponse, error) {
	limit, ok := clampListLimit(limit)
	if !ok {
		return nil, ErrInvalidRequest
	}
	items, err := s.engine.ListRecentRooms(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]viewmodel.RoomView, 0, len(items))
	for _, room := range items {
		out = append(out, viewmodel.BuildRoomView(room, s.engine.TimeoutLedgers(), viewer))
	}
	return &ListResponse{Items: out, Limit: limit}, nil
}

func clampListLimit(limit int) (int, bool) {
	if limit < 0 {
		return 0, false
	}
	if limit == 0 {
		return defaultListLimit, true
	}
	if limit > maxListLimit {
		return maxListLimit, true
	}
	return limit, true
}
