package journal

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormSink stores entries in a SQL table through gorm.
type GormSink struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the journal table.
func OpenPostgres(dsn string) (*GormSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	return NewGormSink(db)
}

func NewGormSink(db *gorm.DB) (*GormSink, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &GormSink{db: db}, nil
}

func (s *GormSink) Name() string { return "postgres" }

func (s *GormSink) Write(ctx context.Context, e Entry) error {
	return s.db.WithContext(ctx).Create(&e).Error
}

func (s *GormSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
