// Package sqlite provides a SQLite-backed character store and ledger.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/Womp-Womp/AdventureBot/internal/platform/storage/sqlitemigrate"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	_ storage.CharacterStore = (*Store)(nil)
	_ storage.Ledger         = (*Store)(nil)
)

// Store persists characters and balances in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) nowMillis() int64 {
	return s.now().UTC().UnixMilli()
}

// SaveCharacter inserts a character. A user holds at most one.
func (s *Store) SaveCharacter(ctx context.Context, c character.Character) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	userID := strings.TrimSpace(c.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	abilities, err := encodeList(c.Abilities)
	if err != nil {
		return fmt.Errorf("encode abilities: %w", err)
	}
	desires, err := encodeList(c.Desires)
	if err != nil {
		return fmt.Errorf("encode desires: %w", err)
	}
	weaknesses, err := encodeList(c.Weaknesses)
	if err != nil {
		return fmt.Errorf("encode weaknesses: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (user_id, name, backstory, abilities, desires, weaknesses, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, c.Name, c.Backstory, abilities, desires, weaknesses, s.nowMillis(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("save character: %w", err)
	}
	return nil
}

// GetCharacter returns the user's character or storage.ErrNotFound.
func (s *Store) GetCharacter(ctx context.Context, userID string) (character.Character, error) {
	if err := s.ready(ctx); err != nil {
		return character.Character{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return character.Character{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, name, backstory, abilities, desires, weaknesses
		   FROM characters
		  WHERE user_id = ?`,
		userID,
	)
	var c character.Character
	var abilities, desires, weaknesses string
	if err := row.Scan(&c.UserID, &c.Name, &c.Backstory, &abilities, &desires, &weaknesses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return character.Character{}, storage.ErrNotFound
		}
		return character.Character{}, fmt.Errorf("get character: %w", err)
	}
	var err error
	if c.Abilities, err = decodeList(abilities); err != nil {
		return character.Character{}, fmt.Errorf("decode abilities: %w", err)
	}
	if c.Desires, err = decodeList(desires); err != nil {
		return character.Character{}, fmt.Errorf("decode desires: %w", err)
	}
	if c.Weaknesses, err = decodeList(weaknesses); err != nil {
		return character.Character{}, fmt.Errorf("decode weaknesses: %w", err)
	}
	return c, nil
}

// DeleteCharacter removes the user's character.
func (s *Store) DeleteCharacter(ctx context.Context, userID string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("user id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM characters WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete character rows affected: %w", err)
	}
	return affected > 0, nil
}

// OpenAccount creates the balance row with initial credits if absent.
func (s *Store) OpenAccount(ctx context.Context, userID string, initial float64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("user id is required")
	}
	if !isFinite(initial) {
		return false, fmt.Errorf("initial balance must be finite")
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO user_credits (user_id, balance, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, initial, s.nowMillis(),
	)
	if err != nil {
		return false, fmt.Errorf("open account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("open account rows affected: %w", err)
	}
	return affected == 1, nil
}

// Balance returns the user's balance; users without a row read as zero.
func (s *Store) Balance(ctx context.Context, userID string) (float64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}
	var balance float64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT balance FROM user_credits WHERE user_id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Credit adds amount to the user's balance.
func (s *Store) Credit(ctx context.Context, userID string, amount float64) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must not be negative")
	}
	return s.adjust(ctx, userID, amount)
}

// Debit subtracts amount from the user's balance. The result may go negative.
func (s *Store) Debit(ctx context.Context, userID string, amount float64) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must not be negative")
	}
	return s.adjust(ctx, userID, -amount)
}

// adjust applies delta in a single upsert so concurrent adjustments never
// lose updates.
func (s *Store) adjust(ctx context.Context, userID string, delta float64) (float64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}
	if !isFinite(delta) {
		return 0, fmt.Errorf("amount must be finite")
	}
	var balance float64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`INSERT INTO user_credits (user_id, balance, updated_at) VALUES (?, ROUND(?, 4), ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   balance = ROUND(user_credits.balance + excluded.balance, 4),
		   updated_at = excluded.updated_at
		 RETURNING balance`,
		userID, delta, s.nowMillis(),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if strings.TrimSpace(raw) == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
