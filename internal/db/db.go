package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"proxylink/internal/model"
)

func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		// logger.Error hides "SLOW SQL" warnings (default is Warn)
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Link{})
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SaveLinks inserts links whose hash is not archived yet and returns how many
// rows were added.
func SaveLinks(db *gorm.DB, links []model.Link) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).CreateInBatches(links, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to archive links: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Prune deletes the oldest links until at most limit remain.
func Prune(db *gorm.DB, limit int) (int64, error) {
	if limit < 0 {
		return 0, fmt.Errorf("invalid prune limit %d", limit)
	}

	var count int64
	if err := db.Model(&model.Link{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count <= int64(limit) {
		return 0, nil
	}

	var keep []uint
	if err := db.Model(&model.Link{}).
		Order("created_at desc, id desc").
		Limit(limit).
		Pluck("id", &keep).Error; err != nil {
		return 0, err
	}

	tx := db.Where("1 = 1")
	if len(keep) > 0 {
		tx = db.Where("id NOT IN ?", keep)
	}
	result := tx.Delete(&model.Link{})
	return result.RowsAffected, result.Error
}

type Count struct {
	Value string
	Count int
}

// CountBy groups the archive by one column, largest groups first.
func CountBy(db *gorm.DB, column string) ([]Count, error) {
	switch column {
	case "kind", "source", "country":
	default:
		return nil, fmt.Errorf("cannot group by %q", column)
	}

	var out []Count
	err := db.Model(&model.Link{}).
		Select(column + " as value, count(*) as count").
		Where(column + " != ''").
		Group(column).
		Order("count desc, value").
		Scan(&out).Error
	return out, err
}
