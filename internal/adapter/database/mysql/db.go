package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// User is the gorm model backing the users table. Optional columns are
// pointers so absent values are stored as NULL.
type User struct {
	ID          string    `gorm:"type:char(36);primaryKey;index:users_created_at_idx,priority:2"`
	UserName    string    `gorm:"column:user_name;type:varchar(16);not null;uniqueIndex:users_user_name_unique"`
	Email       *string   `gorm:"column:email;type:varchar(255);uniqueIndex:users_email_unique"`
	PhoneNumber *string   `gorm:"column:phone_number;type:varchar(32);uniqueIndex:users_phone_number_unique"`
	Password    string    `gorm:"column:password;type:varchar(255);not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime(6);not null;autoCreateTime:false;index:users_created_at_idx,priority:1"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:datetime(6);not null;autoUpdateTime:false"`
}

func (User) TableName() string {
	return "users"
}

type DB struct {
	*gorm.DB
}

type Config struct {
	DSN          string
	LogQueries   bool
	MaxOpenConns int
	MaxIdleConns int
}

// NewDB connects with gorm and migrates the users table.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("MYSQL_DSN is not set")
	}

	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}

	gormDB, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 10
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db := &DB{DB: gormDB}

	if err := db.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Migrate() error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to auto migrate users: %w", err)
	}

	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
