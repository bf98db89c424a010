package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New opens (or creates) the sqlite database at path. The database lives in
// the per-run workspace, so there is no pooling or ping dance like a
// networked database would need.
func New(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite sql db failed: %w", err)
	}
	// sqlite handles one writer at a time; keep the pool at a single conn.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
