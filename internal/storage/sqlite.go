package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

//go:embed sqlite_migrations.sql
var sqliteMigrations string

// SQLiteStorage keeps the registry in a single SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStorage opens (and creates if needed) the database at path.
func NewSQLiteStorage(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStorage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// One writer at a time; the driver would otherwise surface SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("error executing migrations: %w", err)
	}

	logger.Info("SQLite registry ready", zap.String("path", path))
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func ensureDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, grade, class_number, updated_at FROM users WHERE user_id = ?`, id,
	).Scan(&user.ID, &user.Grade, &user.ClassNumber, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStorage) UpsertUser(ctx context.Context, id string, grade, classNumber int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, grade, class_number, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE
		SET grade = excluded.grade,
		    class_number = excluded.class_number,
		    updated_at = excluded.updated_at`,
		id, grade, classNumber)
	if err != nil {
		return fmt.Errorf("error upserting user: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
