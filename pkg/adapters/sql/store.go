package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// PageRow is the table layout of a stored page.
type PageRow struct {
	ID        string `gorm:"primaryKey"`
	Document  string `gorm:"type:text;not null"`
	UpdatedAt int64  `gorm:"not null;index"`
}

func (PageRow) TableName() string { return "pages" }

// Store implements ports.PageStore on a SQL database through gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New wraps db and migrates the pages table.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if err := db.AutoMigrate(&PageRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate pages table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// OpenSQLite opens (or creates) a SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := gdb.Exec(`PRAGMA busy_timeout=5000;`).Error; err != nil {
		return nil, err
	}
	return New(gdb)
}

// Save upserts the page row.
func (s *Store) Save(ctx context.Context, page *schema.PageData) error {
	if page == nil || page.ID == "" {
		return errors.New("page id cannot be empty")
	}
	doc, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}
	row := PageRow{
		ID:        page.ID,
		Document:  string(doc),
		UpdatedAt: s.now().UTC().Unix(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&row).Error
}

// Load reads and decodes the page row.
func (s *Store) Load(ctx context.Context, id string) (*schema.PageData, error) {
	var row PageRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to query page %s: %w", id, err)
	}

	var page schema.PageData
	if err := json.Unmarshal([]byte(row.Document), &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page %s: %w", id, err)
	}
	return &page, nil
}

// Delete removes the page row.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&PageRow{}).Error
}

// List returns page ids, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&PageRow{}).
		Order("updated_at DESC").Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return ids, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
