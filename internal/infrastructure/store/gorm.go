package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// Blob is one stored document
type Blob struct {
	Key       string `gorm:"column:blob_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name
func (Blob) TableName() string {
	return "blobs"
}

// GormStore is a BlobStore backed by a single gorm table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the blobs table and wraps db
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("migrate blobs table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Load returns the value saved under key
func (s *GormStore) Load(ctx context.Context, key string) (string, error) {
	var blob Blob
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrBlobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load blob %s: %w", key, err)
	}
	return blob.Value, nil
}

// Save replaces the value under key in one statement
func (s *GormStore) Save(ctx context.Context, key string, value string) error {
	blob := Blob{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenSQLite opens (creating if needed) a sqlite database at dbPath
func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return database, nil
}

// OpenPostgres connects to postgres using dsn
func OpenPostgres(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return database, nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
