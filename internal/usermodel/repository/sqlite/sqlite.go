// Package sqlite is the embedded storage backend. It keeps the same schema
// and id sequence as the postgres migrations so both backends hand out
// identical ids for the same sequence of writes.
package sqlite

import (
	"fmt"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const entitySeq = "entity_seq"

type Store struct {
	db *gorm.DB
}

func Open(cfg config.SQLite) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{ //nolint:exhaustruct
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open error: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB() error: %w", err)
	}

	// one connection keeps a shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		sqlDB.Close()

		return nil, fmt.Errorf("enable foreign keys error: %w", err)
	}

	if err := db.AutoMigrate(
		&roleRecord{},
		&userRecord{},
		&useremailRecord{},
		&userRoleRecord{},
		&sequenceRecord{},
	); err != nil {
		sqlDB.Close()

		return nil, fmt.Errorf("auto migrate error: %w", err)
	}

	seq := sequenceRecord{Name: entitySeq, Value: 0}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil { //nolint:exhaustruct
		sqlDB.Close()

		return nil, fmt.Errorf("init sequence error: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Users() UsersSQLiteRepo {
	return UsersSQLiteRepo{db: s.db}
}

func (s *Store) Roles() RolesSQLiteRepo {
	return RolesSQLiteRepo{db: s.db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("db.DB() error: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}

	return nil
}

func nextID(tx *gorm.DB) (int64, error) {
	res := tx.Model(&sequenceRecord{}).Where("name = ?", entitySeq).Update("value", gorm.Expr("value + 1")) //nolint:exhaustruct
	if err := res.Error; err != nil {
		return 0, fmt.Errorf("advance sequence error: %w", err)
	}

	var seq sequenceRecord
	if err := tx.Where("name = ?", entitySeq).Take(&seq).Error; err != nil {
		return 0, fmt.Errorf("read sequence error: %w", err)
	}

	return seq.Value, nil
}
