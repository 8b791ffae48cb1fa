package game

import (
	"context"
	"fmt"

	"github.com/SlpAus/lifesim-backend/internal/character"
	"github.com/SlpAus/lifesim-backend/internal/event"
)

// Service 编排一局游戏的各个回合：存储、属性计算、事件生成和状态缓存
type Service struct {
	store  *Store
	cache  *StateCache
	events *event.Guarded
}

// NewService 创建游戏服务。cache可以为nil，此时所有读取直接访问数据库。
// 缓存交给 store 在持有游戏锁时维护。
func NewService(store *Store, cache *StateCache, events *event.Guarded) *Service {
	store.cache = cache
	return &Service{
		store:  store,
		cache:  cache,
		events: events,
	}
}

// TurnResult 是一次状态变更后返回给客户端的内容：最新状态和下一个事件
type TurnResult struct {
	State GameState
	Event event.Event
}

// StartGame 创建新游戏(用户、游戏和第1天)，并生成开场事件
func (s *Service) StartGame(ctx context.Context, profile character.Profile) (TurnResult, error) {
	game, day, err := s.store.CreateGame(ctx, profile)
	if err != nil {
		return TurnResult{}, err
	}
	fmt.Printf("新游戏已创建: game=%d user=%d\n", game.ID, game.UserID)

	return TurnResult{
		State: Assemble(game, day),
		Event: s.nextEvent(ctx, game, day),
	}, nil
}

// MakeChoice 把选择的影响应用到最新一天，追加新的一天，并生成新一天的事件。
// expectedDay 不为nil时，只有当前天数与之相等才会追加。
func (s *Service) MakeChoice(ctx context.Context, gameID uint, impact character.Impact, expectedDay *int) (TurnResult, error) {
	game, day, err := s.store.AppendDay(ctx, gameID, expectedDay, func(latest Day) character.Stats {
		return character.Apply(latest.Stats, impact)
	})
	if err != nil {
		return TurnResult{}, err
	}

	return TurnResult{
		State: Assemble(game, day),
		Event: s.nextEvent(ctx, game, day),
	}, nil
}

// GetState 返回游戏当前状态，优先读取缓存
func (s *Service) GetState(ctx context.Context, gameID uint) (GameState, error) {
	if !s.cache.canRead() {
		game, day, err := s.store.GetCurrent(ctx, gameID)
		if err != nil {
			return GameState{}, err
		}
		return Assemble(game, day), nil
	}
	return s.cache.Load(ctx, gameID, func() (GameState, error) {
		return s.store.LoadState(ctx, gameID)
	})
}

// GetHistory 返回游戏的全部历史
func (s *Service) GetHistory(ctx context.Context, gameID uint) ([]Day, error) {
	return s.store.ListDays(ctx, gameID)
}

// NextEvent 为游戏的当前一天生成事件，不修改任何数据
func (s *Service) NextEvent(ctx context.Context, gameID uint) (event.Event, error) {
	game, day, err := s.store.GetCurrent(ctx, gameID)
	if err != nil {
		return event.Event{}, err
	}
	return s.nextEvent(ctx, game, day), nil
}

// DeleteGame 删除游戏及其历史，并使缓存失效
func (s *Service) DeleteGame(ctx context.Context, gameID uint) error {
	if err := s.store.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	fmt.Printf("游戏 %d 已删除\n", gameID)
	return nil
}

// WarmupCache 清空状态缓存，并从数据库重新载入所有游戏的当前状态。
// 数据损坏的游戏会被跳过，留给读取时报告。
func (s *Service) WarmupCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Flush(ctx); err != nil {
		return err
	}

	ids, err := s.store.ListGameIDs(ctx)
	if err != nil {
		return err
	}

	warmed, err := s.store.WarmCache(ctx, ids)
	if err != nil {
		return err
	}
	fmt.Printf("成功预热 %d 局游戏的状态到Redis。\n", warmed)
	return nil
}

func (s *Service) nextEvent(ctx context.Context, game Game, day Day) event.Event {
	// Guarded 永远不会返回错误，失败时给出默认事件
	ev, _ := s.events.Generate(ctx, event.Request{
		Day:     day.NumberOfDay,
		Stats:   day.Stats,
		Profile: game.Profile(),
	})
	return ev
}
