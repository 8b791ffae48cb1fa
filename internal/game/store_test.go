package game

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/SlpAus/lifesim-backend/internal/character"
	"github.com/SlpAus/lifesim-backend/internal/platform/config"
	"github.com/SlpAus/lifesim-backend/internal/platform/database"
	"github.com/SlpAus/lifesim-backend/internal/user"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSqlite,
		Sqlite: config.SqliteConfig{Path: filepath.Join(t.TempDir(), "lifesim.db")},
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := user.MigrateDB(db); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("migrate games: %v", err)
	}
	return db
}

func testProfile() character.Profile {
	return character.Profile{CharacterName: "Alex", Gender: "male", Age: 17, Work: false}
}

func applyImpact(impact character.Impact) func(Day) character.Stats {
	return func(latest Day) character.Stats {
		return character.Apply(latest.Stats, impact)
	}
}

func TestCreateGameCreatesUserGameAndFirstDay(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	game, day, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.ID == 0 || game.UserID == 0 {
		t.Fatalf("expected ids to be assigned: %+v", game)
	}
	if day.NumberOfDay != 1 {
		t.Fatalf("expected day 1, got %d", day.NumberOfDay)
	}
	if day.Stats != character.DefaultStats() {
		t.Fatalf("expected default stats, got %+v", day.Stats)
	}

	if err := db.First(&user.User{}, game.UserID).Error; err != nil {
		t.Fatalf("user should exist: %v", err)
	}
	latest, err := store.GetLatestDay(ctx, game.ID)
	if err != nil {
		t.Fatalf("get latest day: %v", err)
	}
	if latest.NumberOfDay != 1 || latest.Stats != character.DefaultStats() {
		t.Fatalf("unexpected persisted day: %+v", latest)
	}

	stored, err := store.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if stored.Profile() != testProfile() {
		t.Fatalf("static properties not persisted: %+v", stored.Profile())
	}
}

func TestCreateGameIsAtomic(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_days", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "days" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, _, err := store.CreateGame(context.Background(), testProfile()); err == nil {
		t.Fatalf("expected create to fail")
	}

	var games, users int64
	db.Model(&Game{}).Count(&games)
	db.Model(&user.User{}).Count(&users)
	if games != 0 || users != 0 {
		t.Fatalf("partial create committed: games=%d users=%d", games, users)
	}
}

func TestAppendDaySequential(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	_, day2, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{Health: -10, Money: 25.5}))
	if err != nil {
		t.Fatalf("append day 2: %v", err)
	}
	_, day3, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{Health: -10}))
	if err != nil {
		t.Fatalf("append day 3: %v", err)
	}

	if day2.NumberOfDay != 2 || day3.NumberOfDay != 3 {
		t.Fatalf("expected days 2 and 3, got %d and %d", day2.NumberOfDay, day3.NumberOfDay)
	}
	if day3.Health != 80 {
		t.Fatalf("expected health 80 after two -10 impacts, got %d", day3.Health)
	}
	if day3.Money != 75.5 {
		t.Fatalf("expected money 75.5, got %v", day3.Money)
	}
}

func TestAppendDayHistoryIsGapFree(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	const choices = 12
	for i := 0; i < choices; i++ {
		if _, _, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{Stress: 3})); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	days, err := store.ListDays(ctx, game.ID)
	if err != nil {
		t.Fatalf("list days: %v", err)
	}
	if len(days) != choices+1 {
		t.Fatalf("expected %d days, got %d", choices+1, len(days))
	}
	for i, d := range days {
		if d.NumberOfDay != i+1 {
			t.Fatalf("gap in history at index %d: day %d", i, d.NumberOfDay)
		}
	}
}

func TestAppendDayConcurrentChoices(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	const workers = 16
	numbers := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, day, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{Happiness: 1}))
			numbers[i], errs[i] = day.NumberOfDay, err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}
	sort.Ints(numbers)
	for i, n := range numbers {
		if n != i+2 {
			t.Fatalf("expected distinct consecutive day numbers starting at 2, got %v", numbers)
		}
	}

	latest, err := store.GetLatestDay(ctx, game.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.Happiness != 50+workers {
		t.Fatalf("expected every choice to build on the previous day, happiness=%d", latest.Happiness)
	}
	if store.locks.size() != 0 {
		t.Fatalf("game locks leaked: %d", store.locks.size())
	}
}

func TestAppendDayExpectedDay(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	one := 1
	if _, _, err := store.AppendDay(ctx, game.ID, &one, applyImpact(character.Impact{})); err != nil {
		t.Fatalf("append with matching expected day: %v", err)
	}

	// 客户端重放了同一个请求
	if _, _, err := store.AppendDay(ctx, game.ID, &one, applyImpact(character.Impact{})); !errors.Is(err, ErrDayConflict) {
		t.Fatalf("expected ErrDayConflict, got %v", err)
	}

	latest, err := store.GetLatestDay(ctx, game.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.NumberOfDay != 2 {
		t.Fatalf("rejected append must not write, latest=%d", latest.NumberOfDay)
	}
}

func TestAppendDayRejectsDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	dup := Day{GameID: game.ID, NumberOfDay: 1, Stats: character.DefaultStats()}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique index to reject duplicate day")
	}
}

func TestMissingGame(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	if _, err := store.GetGame(ctx, 42); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("GetGame: expected ErrGameNotFound, got %v", err)
	}
	if _, err := store.GetLatestDay(ctx, 42); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("GetLatestDay: expected ErrGameNotFound, got %v", err)
	}
	if _, _, err := store.AppendDay(ctx, 42, nil, applyImpact(character.Impact{})); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("AppendDay: expected ErrGameNotFound, got %v", err)
	}
	if err := store.DeleteGame(ctx, 42); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("DeleteGame: expected ErrGameNotFound, got %v", err)
	}
}

func TestGameWithoutDaysIsCorruption(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := db.Where("game_id = ?", game.ID).Delete(&Day{}).Error; err != nil {
		t.Fatalf("delete days: %v", err)
	}

	if _, err := store.GetLatestDay(ctx, game.ID); !errors.Is(err, ErrStorageCorruption) {
		t.Fatalf("expected ErrStorageCorruption, got %v", err)
	}
	if _, _, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{})); !errors.Is(err, ErrStorageCorruption) {
		t.Fatalf("append must not patch corrupted game, got %v", err)
	}

	var count int64
	db.Model(&Day{}).Where("game_id = ?", game.ID).Count(&count)
	if count != 0 {
		t.Fatalf("corrupted game was silently repaired with %d days", count)
	}
}

func TestDeleteGameRemovesDays(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	other, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create other game: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := store.AppendDay(ctx, game.ID, nil, applyImpact(character.Impact{})); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := store.DeleteGame(ctx, game.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}

	if _, err := store.GetGame(ctx, game.ID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected deleted game to be gone, got %v", err)
	}
	var count int64
	db.Model(&Day{}).Where("game_id = ?", game.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected days to be deleted, %d left", count)
	}
	if _, err := store.GetLatestDay(ctx, other.ID); err != nil {
		t.Fatalf("other game must be untouched: %v", err)
	}

	ids, err := store.ListGameIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != other.ID {
		t.Fatalf("unexpected game ids %v", ids)
	}
}

func TestAppendDayRejectsNonFiniteStats(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	game, _, err := store.CreateGame(ctx, testProfile())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	huge := character.Impact{Money: 1.7e308}
	if _, _, err := store.AppendDay(ctx, game.ID, nil, applyImpact(huge)); err != nil {
		t.Fatalf("finite append: %v", err)
	}
	if _, _, err := store.AppendDay(ctx, game.ID, nil, applyImpact(huge)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for overflowing money, got %v", err)
	}

	var days int64
	db.Model(&Day{}).Where("game_id = ?", game.ID).Count(&days)
	if days != 2 {
		t.Fatalf("rejected append must not write a row, got %d days", days)
	}
	latest, err := store.GetLatestDay(ctx, game.ID)
	if err != nil {
		t.Fatalf("latest day: %v", err)
	}
	if latest.NumberOfDay != 2 || !latest.Stats.Finite() {
		t.Fatalf("unexpected latest day: %+v", latest)
	}
}
