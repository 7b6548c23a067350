package historydb

import (
	"errors"
	"strings"
	"time"

	dbmodel "github.com/chauey/ngrev/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Tsconfig    string
	ShowLibs    bool
	FirstOpened time.Time
	LastOpened  time.Time
	OpenCount   int
}

// Store keeps the "open recent" list of projects. It is host chrome;
// analysis state never lands here.
type Store struct {
	db *gorm.DB
}

// NewStore uses the shared process DB. Caller must not close the db.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &Store{db: db}, nil
}

// Touch records an opened project, bumping its open count and last
// opened time when the tsconfig was seen before.
func (s *Store) Touch(tsconfig string, showLibs bool) error {
	if s == nil || s.db == nil {
		return errors.New("project history store is not initialized")
	}
	p := strings.TrimSpace(tsconfig)
	if p == "" {
		return errors.New("tsconfig is required")
	}
	now := time.Now().UTC().Unix()
	row := dbmodel.ProjectHistory{
		Tsconfig:      p,
		ShowLibs:      showLibs,
		FirstOpenedAt: now,
		LastOpenedAt:  now,
		OpenCount:     1,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tsconfig"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_opened_at": now,
			"show_libs":      showLibs,
			"open_count":     gorm.Expr("project_history.open_count + 1"),
		}),
	}).Create(&row).Error
}

func (s *Store) List(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("project history store is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows := make([]dbmodel.ProjectHistory, 0, limit)
	if err := s.db.Order("last_opened_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, limit)
	for _, row := range rows {
		entries = append(entries, Entry{
			Tsconfig:    row.Tsconfig,
			ShowLibs:    row.ShowLibs,
			FirstOpened: time.Unix(row.FirstOpenedAt, 0).UTC(),
			LastOpened:  time.Unix(row.LastOpenedAt, 0).UTC(),
			OpenCount:   row.OpenCount,
		})
	}
	return entries, nil
}

func (s *Store) Clear() error {
	if s == nil || s.db == nil {
		return errors.New("project history store is not initialized")
	}
	return s.db.Where("1 = 1").Delete(&dbmodel.ProjectHistory{}).Error
}

// Close is a no-op; the DB is process-wide and owned by the caller.
func (s *Store) Close() error {
	return nil
}
