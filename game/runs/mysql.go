package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/wricardo/superslide/game/engine"
)

// errDuplicateEntry is the MySQL error number for a primary key clash.
const errDuplicateEntry = 1062

const schema = `CREATE TABLE IF NOT EXISTS best_runs (
	player_id   VARCHAR(64) NOT NULL,
	username    VARCHAR(64) NOT NULL,
	level       INT NOT NULL,
	seconds     INT NOT NULL,
	rating      CHAR(1) NOT NULL,
	run_id      CHAR(36) NOT NULL,
	recorded_at DATETIME NOT NULL,
	PRIMARY KEY (player_id, level),
	KEY idx_best_runs_level_seconds (level, seconds)
)`

// MySQLConfig holds connection settings for MySQLStore.
type MySQLConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Addr     string `yaml:"addr"`
	DBName   string `yaml:"db_name"`
}

// DSN renders the config as a driver data source name.
func (c MySQLConfig) DSN() string {
	cfg := mysql.Config{
		User:                 c.User,
		Passwd:               c.Password,
		Net:                  "tcp",
		Addr:                 c.Addr,
		DBName:               c.DBName,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	return cfg.FormatDSN()
}

// NormalizeDSN parses dsn and forces the options the store relies on.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// MySQLStore is a Store backed by a MySQL table of best runs.
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL connects, pings and creates the schema if needed.
func OpenMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach mysql: %w", err)
	}

	store := NewMySQLStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewMySQLStore wraps an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// EnsureSchema creates the best_runs table if it is missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *MySQLStore) RecordBest(ctx context.Context, player Player, run Run) (bool, *int, error) {
	if err := run.Validate(); err != nil {
		return false, nil, err
	}

	saved, previous, err := s.recordBest(ctx, player, run)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
		// A concurrent first submission won the insert; compare against it.
		return s.recordBest(ctx, player, run)
	}
	return saved, previous, err
}

func (s *MySQLStore) recordBest(ctx context.Context, player Player, run Run) (bool, *int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		"SELECT seconds FROM best_runs WHERE player_id = ? AND level = ? FOR UPDATE",
		player.ID, run.Level).Scan(&current)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO best_runs (player_id, username, level, seconds, rating, run_id, recorded_at) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?)",
			player.ID, player.Username, run.Level, run.Seconds, string(run.Rating),
			run.ID.String(), run.FinishedAt.UTC()); err != nil {
			return false, nil, fmt.Errorf("failed to insert run: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, nil, fmt.Errorf("failed to commit run: %w", err)
		}
		return true, nil, nil

	case err != nil:
		return false, nil, fmt.Errorf("failed to read best run: %w", err)
	}

	previous := current
	if run.Seconds >= current {
		return false, &previous, nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE best_runs SET username = ?, seconds = ?, rating = ?, run_id = ?, recorded_at = ? "+
			"WHERE player_id = ? AND level = ?",
		player.Username, run.Seconds, string(run.Rating), run.ID.String(), run.FinishedAt.UTC(),
		player.ID, run.Level); err != nil {
		return false, nil, fmt.Errorf("failed to update run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return true, &previous, nil
}

func (s *MySQLStore) Leaderboard(ctx context.Context, level, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT player_id, username, seconds, rating, recorded_at FROM best_runs "+
			"WHERE level = ? ORDER BY seconds ASC, recorded_at ASC LIMIT ?",
		level, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var rating string
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.Seconds, &rating, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		e.Rating = engine.Rating(rating)
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *MySQLStore) PlayerRuns(ctx context.Context, playerID string) ([]PlayerRun, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT level, seconds, rating, recorded_at FROM best_runs WHERE player_id = ? ORDER BY level ASC",
		playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player runs: %w", err)
	}
	defer rows.Close()

	var out []PlayerRun
	for rows.Next() {
		var r PlayerRun
		var rating string
		if err := rows.Scan(&r.Level, &r.Seconds, &rating, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player run: %w", err)
		}
		r.Rating = engine.Rating(rating)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}
