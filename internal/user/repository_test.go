package user

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateAssignsDistinctIDs(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	first, err := Create(db)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := Create(db)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 || first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 users, got %d", count)
	}
}
