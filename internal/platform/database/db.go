package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/SlpAus/lifesim-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的数据库连接，游戏数据的唯一可信来源
var DB *gorm.DB

// InitDB 初始化数据库连接，失败时直接panic
func InitDB(cfg config.DatabaseConfig) {
	db, err := Open(cfg)
	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}
	DB = db
	fmt.Printf("数据库连接成功！(driver=%s)\n", cfg.Driver)
}

// Open 根据配置打开一个新的gorm连接，不修改全局变量
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: newLogger(cfg.LogLevel),
		// 把唯一索引冲突等驱动错误转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	switch cfg.Driver {
	case config.DriverSqlite:
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.Sqlite.Path)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("无法打开SQLite数据库 %s: %w", cfg.Sqlite.Path, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("无法获取SQLite底层连接: %w", err)
		}
		// SQLite只允许单个写入者，限制为一个连接可以避免 SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return db, nil
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("无法连接PostgreSQL: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("无法获取PostgreSQL底层连接: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		return db, nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Driver)
	}
}

// sqliteDSN 为SQLite路径附加必需的参数：
// 打开外键(级联删除依赖它)，并设置忙等待时间
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch strings.ToLower(level) {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	default:
		logLevel = logger.Silent
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Ping 检查数据库是否可用，供健康检查接口使用
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
