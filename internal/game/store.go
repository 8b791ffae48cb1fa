package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/lifesim-backend/internal/character"
	"github.com/SlpAus/lifesim-backend/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const warmupBatchSize = 100

// Store 是游戏数据的持久化层，数据库是唯一可信来源。
// 所有修改同一局游戏的操作都在该游戏的锁内、并在单个事务中完成；
// 状态缓存也只在持有游戏锁时写入或删除。
type Store struct {
	db         *gorm.DB
	locks      *keyedMutex
	rowLocking bool
	cache      *StateCache
}

// NewStore 创建一个基于给定数据库连接的Store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		locks: newKeyedMutex(),
		// SQLite不支持 SELECT ... FOR UPDATE，只在PostgreSQL上启用行锁
		rowLocking: db.Dialector.Name() == "postgres",
	}
}

// CreateGame 在同一个事务中创建用户、游戏和第1天。
// 任何一步失败都会整体回滚，不会留下没有第1天的游戏。
func (s *Store) CreateGame(ctx context.Context, profile character.Profile) (Game, Day, error) {
	var game Game
	var day Day

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newUser, err := user.Create(tx)
		if err != nil {
			return err
		}

		game = Game{
			UserID:        newUser.ID,
			Age:           profile.Age,
			Gender:        profile.Gender,
			CharacterName: profile.CharacterName,
			Work:          profile.Work,
		}
		if err := tx.Omit(clause.Associations).Create(&game).Error; err != nil {
			return fmt.Errorf("无法创建游戏: %w", err)
		}

		day = Day{
			GameID:      game.ID,
			NumberOfDay: 1,
			Stats:       character.DefaultStats(),
		}
		if err := tx.Create(&day).Error; err != nil {
			return fmt.Errorf("无法创建第1天: %w", err)
		}
		return nil
	})
	if err != nil {
		return Game{}, Day{}, err
	}

	if s.cache != nil {
		// 提交后到加锁前，游戏可能已被并发删除，此时不回填
		if _, err := s.LoadState(ctx, game.ID); err != nil && !errors.Is(err, ErrGameNotFound) {
			fmt.Printf("警告: 无法缓存新游戏 %d 的状态: %v\n", game.ID, err)
		}
	}
	return game, day, nil
}

// GetGame 按ID查询游戏
func (s *Store) GetGame(ctx context.Context, gameID uint) (Game, error) {
	return findGame(s.db.WithContext(ctx), gameID)
}

// GetLatestDay 返回游戏当前(编号最大)的一天
func (s *Store) GetLatestDay(ctx context.Context, gameID uint) (Day, error) {
	db := s.db.WithContext(ctx)
	if _, err := findGame(db, gameID); err != nil {
		return Day{}, err
	}
	return latestDay(db, gameID)
}

// GetCurrent 一次性返回游戏和它当前的一天
func (s *Store) GetCurrent(ctx context.Context, gameID uint) (Game, Day, error) {
	db := s.db.WithContext(ctx)
	game, err := findGame(db, gameID)
	if err != nil {
		return Game{}, Day{}, err
	}
	day, err := latestDay(db, gameID)
	if err != nil {
		return Game{}, Day{}, err
	}
	return game, day, nil
}

// AppendDay 在游戏的锁和事务内追加新的一天：
// 读取最新一天，(可选)校验期望天数，用 compute 计算新属性，写入编号为 latest+1 的记录。
// 失败时不重试，也不会留下部分写入。
func (s *Store) AppendDay(ctx context.Context, gameID uint, expectedDay *int, compute func(latest Day) character.Stats) (Game, Day, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	var game Game
	var next Day

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if s.rowLocking {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var err error
		game, err = findGame(query, gameID)
		if err != nil {
			return err
		}

		latest, err := latestDay(tx, gameID)
		if err != nil {
			return err
		}
		if expectedDay != nil && *expectedDay != latest.NumberOfDay {
			return fmt.Errorf("%w: 游戏 %d 当前为第 %d 天，请求期望第 %d 天", ErrDayConflict, gameID, latest.NumberOfDay, *expectedDay)
		}

		next = Day{
			GameID:      gameID,
			NumberOfDay: latest.NumberOfDay + 1,
			Stats:       compute(latest),
		}
		if !next.Stats.Finite() {
			return fmt.Errorf("%w: 游戏 %d 第 %d 天的属性超出可表示的数值范围", ErrValidation, gameID, next.NumberOfDay)
		}
		if err := tx.Create(&next).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: 游戏 %d 的第 %d 天已被写入", ErrDayConflict, gameID, next.NumberOfDay)
			}
			return fmt.Errorf("无法写入游戏 %d 的第 %d 天: %w", gameID, next.NumberOfDay, err)
		}
		return nil
	})
	if err != nil {
		return Game{}, Day{}, err
	}

	s.cache.Set(ctx, gameID, Assemble(game, next))
	return game, next, nil
}

// LoadState 在游戏锁内读取当前状态并回填缓存
func (s *Store) LoadState(ctx context.Context, gameID uint) (GameState, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, day, err := s.GetCurrent(ctx, gameID)
	if err != nil {
		return GameState{}, err
	}
	state := Assemble(game, day)
	s.cache.Set(ctx, gameID, state)
	return state, nil
}

// ListDays 按天数升序返回游戏的完整历史
func (s *Store) ListDays(ctx context.Context, gameID uint) ([]Day, error) {
	db := s.db.WithContext(ctx)
	if _, err := findGame(db, gameID); err != nil {
		return nil, err
	}

	var days []Day
	if err := db.Where("game_id = ?", gameID).Order("number_of_day asc").Find(&days).Error; err != nil {
		return nil, fmt.Errorf("无法查询游戏 %d 的历史: %w", gameID, err)
	}
	if len(days) == 0 {
		return nil, corruption(gameID)
	}
	return days, nil
}

// DeleteGame 删除游戏及其全部历史
func (s *Store) DeleteGame(ctx context.Context, gameID uint) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findGame(tx, gameID); err != nil {
			return err
		}
		// 外键已设置级联删除，这里显式删除以免依赖数据库的外键开关
		if err := tx.Where("game_id = ?", gameID).Delete(&Day{}).Error; err != nil {
			return fmt.Errorf("无法删除游戏 %d 的历史: %w", gameID, err)
		}
		if err := tx.Delete(&Game{}, gameID).Error; err != nil {
			return fmt.Errorf("无法删除游戏 %d: %w", gameID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, gameID)
	return nil
}

// ListGameIDs 返回所有游戏的ID，用于缓存重建
func (s *Store) ListGameIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&Game{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("无法查询游戏列表: %w", err)
	}
	return ids, nil
}

// WarmCache 分批锁定游戏，从数据库读取当前状态并批量写入缓存，返回写入的游戏数。
// 数据损坏或已删除的游戏会被跳过，留给读取时报告。
func (s *Store) WarmCache(ctx context.Context, ids []uint) (int, error) {
	warmed := 0
	for start := 0; start < len(ids); start += warmupBatchSize {
		n, err := s.warmBatch(ctx, ids[start:min(start+warmupBatchSize, len(ids))])
		warmed += n
		if err != nil {
			return warmed, err
		}
	}
	return warmed, nil
}

func (s *Store) warmBatch(ctx context.Context, ids []uint) (int, error) {
	unlock := s.locks.LockAll(ids)
	defer unlock()

	states := make([]GameState, 0, len(ids))
	for _, id := range ids {
		game, day, err := s.GetCurrent(ctx, id)
		if errors.Is(err, ErrStorageCorruption) || errors.Is(err, ErrGameNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		states = append(states, Assemble(game, day))
	}
	if err := s.cache.fill(ctx, states); err != nil {
		return 0, err
	}
	return len(states), nil
}

func findGame(db *gorm.DB, gameID uint) (Game, error) {
	var game Game
	err := db.First(&game, gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Game{}, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	if err != nil {
		return Game{}, fmt.Errorf("无法查询游戏 %d: %w", gameID, err)
	}
	return game, nil
}

func latestDay(db *gorm.DB, gameID uint) (Day, error) {
	var day Day
	err := db.Where("game_id = ?", gameID).Order("number_of_day desc").First(&day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Day{}, corruption(gameID)
	}
	if err != nil {
		return Day{}, fmt.Errorf("无法查询游戏 %d 的最新一天: %w", gameID, err)
	}
	return day, nil
}

func corruption(gameID uint) error {
	fmt.Printf("严重错误: 游戏 %d 存在但没有任何一天的记录\n", gameID)
	return fmt.Errorf("%w: 游戏 %d 没有任何一天的记录", ErrStorageCorruption, gameID)
}
