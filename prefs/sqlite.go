package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"

	"media-gallery/locale"
)

// Preference è una riga della tabella preferences
type Preference struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:32"`
	UpdatedAt time.Time
}

// SQLiteStore salva la preferenza in un file SQLite
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite apre (o crea) il database e migra la tabella
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	logger := log.FromContext(ctx).WithPrefix("prefs")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("errore creazione cartella dati: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("errore apertura database: %w", err)
	}
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("migrazione fallita: %w", err)
	}

	logger.Debug("database preferenze pronto", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Language(ctx context.Context) (locale.Language, bool, error) {
	var pref Preference
	err := s.db.WithContext(ctx).Where(&Preference{Key: locale.PreferenceKey}).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	lang, err := locale.Parse(pref.Value)
	if err != nil {
		return "", false, err
	}
	return lang, true, nil
}

func (s *SQLiteStore) SetLanguage(ctx context.Context, lang locale.Language) error {
	pref := Preference{Key: locale.PreferenceKey, Value: lang.String()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&pref).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
