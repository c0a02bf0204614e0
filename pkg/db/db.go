// Package db 提供 GORM 初始化、连接池配置、作用域会话与事务助手
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/wyfcoding/pensiondb/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB 数据库实例包装
type DB struct {
	*gorm.DB
	driver string
	logger *slog.Logger
}

// Open 打开数据库连接并测试连通性
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logger, cfg.LogEnabled, time.Duration(cfg.SlowQueryThreshold)*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 配置连接池
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	// 测试连接
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.DebugContext(ctx, "database connected", "driver", cfg.Driver)

	return &DB{DB: gdb, driver: cfg.Driver, logger: logger}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// WithSession 打开一个会话并执行 fn，任何返回路径（包括 panic）都会关闭连接
func WithSession(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger, fn func(ctx context.Context, db *DB) error) (err error) {
	d, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := d.Close(); closeErr != nil {
			d.logger.Warn("failed to close database session", "error", closeErr)
			if err == nil {
				err = fmt.Errorf("failed to close database: %w", closeErr)
			}
		}
	}()
	return fn(ctx, d)
}

// Driver 返回驱动名称
func (d *DB) Driver() string {
	return d.driver
}

// Close 关闭数据库连接
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx 在事务中执行函数，出错或 panic 时回滚
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// VersionQuery 返回当前方言下查询服务端版本的语句
func (d *DB) VersionQuery() string {
	switch d.driver {
	case "postgres":
		return "SELECT version()"
	case "sqlite":
		return "SELECT sqlite_version()"
	default:
		return "SELECT VERSION()"
	}
}

// ServerVersion 执行一次最轻量的内省查询
func (d *DB) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := d.DB.WithContext(ctx).Raw(d.VersionQuery()).Scan(&version).Error; err != nil {
		return "", err
	}
	return version, nil
}
