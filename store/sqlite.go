package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/LazyTarget/Considition-2020/model"
)

// Game is one played game as kept in history.
type Game struct {
	GameID    string
	MapName   string
	Strategy  string
	Seed      int64
	StartedAt time.Time
	EndedAt   time.Time // zero while the game is unfinished
	Turns     int
	Premature bool
	Score     model.Score
}

// Turn is the state a game was left in after one action.
type Turn struct {
	GameID     string
	Turn       int
	Source     string
	Funds      float64
	Population int
	Capacity   int
	Buildings  int
	Errors     int
}

// Store is the local game history.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			map_name TEXT NOT NULL,
			strategy TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL DEFAULT 0,
			turns INTEGER NOT NULL DEFAULT 0,
			premature INTEGER NOT NULL DEFAULT 0,
			final_score REAL NOT NULL DEFAULT 0,
			co2 REAL NOT NULL DEFAULT 0,
			final_pop INTEGER NOT NULL DEFAULT 0,
			happiness REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
			turn INTEGER NOT NULL,
			source TEXT NOT NULL,
			funds REAL NOT NULL,
			population INTEGER NOT NULL,
			capacity INTEGER NOT NULL,
			buildings INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			PRIMARY KEY (game_id, turn)
		);`,
		`CREATE INDEX IF NOT EXISTS games_started ON games(started_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BeginGame records a game being played. Beginning a game that is already
// known (a resumed game) keeps its original row.
func (s *Store) BeginGame(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (game_id, map_name, strategy, seed, started_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(game_id) DO NOTHING`,
		g.GameID, g.MapName, g.Strategy, g.Seed, unixMilli(g.StartedAt))
	if err != nil {
		return fmt.Errorf("begin game %s: %w", g.GameID, err)
	}
	return nil
}

// RecordTurn stores the state after one turn. A repeated turn number
// (an action that did not advance the game) replaces the earlier row.
func (s *Store) RecordTurn(ctx context.Context, t Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (game_id, turn, source, funds, population, capacity, buildings, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(game_id, turn) DO UPDATE SET
			source=excluded.source, funds=excluded.funds, population=excluded.population,
			capacity=excluded.capacity, buildings=excluded.buildings, errors=excluded.errors`,
		t.GameID, t.Turn, t.Source, t.Funds, t.Population, t.Capacity, t.Buildings, t.Errors)
	if err != nil {
		return fmt.Errorf("record turn %d of %s: %w", t.Turn, t.GameID, err)
	}
	return nil
}

// FinishGame stores the outcome of a game. A game that was never begun is
// inserted whole.
func (s *Store) FinishGame(ctx context.Context, g Game) error {
	started := g.StartedAt
	if started.IsZero() {
		started = g.EndedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (game_id, map_name, strategy, seed, started_at, ended_at, turns, premature,
			final_score, co2, final_pop, happiness)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
			ended_at=excluded.ended_at, turns=excluded.turns, premature=excluded.premature,
			final_score=excluded.final_score, co2=excluded.co2,
			final_pop=excluded.final_pop, happiness=excluded.happiness`,
		g.GameID, g.MapName, g.Strategy, g.Seed, unixMilli(started), unixMilli(g.EndedAt), g.Turns,
		g.Premature, g.Score.FinalScore, g.Score.TotalCo2, g.Score.FinalPopulation, g.Score.TotalHappiness)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", g.GameID, err)
	}
	return nil
}

// Games returns the most recently started games first. limit <= 0 means all.
func (s *Store) Games(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, map_name, strategy, seed, started_at, ended_at, turns, premature,
			final_score, co2, final_pop, happiness
		 FROM games ORDER BY started_at DESC, game_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var (
			g              Game
			started, ended int64
		)
		if err := rows.Scan(&g.GameID, &g.MapName, &g.Strategy, &g.Seed, &started, &ended, &g.Turns,
			&g.Premature, &g.Score.FinalScore, &g.Score.TotalCo2, &g.Score.FinalPopulation,
			&g.Score.TotalHappiness); err != nil {
			return nil, err
		}
		g.StartedAt = fromUnixMilli(started)
		g.EndedAt = fromUnixMilli(ended)
		g.Score.GameID = g.GameID
		games = append(games, g)
	}
	return games, rows.Err()
}

// Turns returns the recorded turns of gameID in turn order.
func (s *Store) Turns(ctx context.Context, gameID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, turn, source, funds, population, capacity, buildings, errors
		 FROM turns WHERE game_id = ? ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.GameID, &t.Turn, &t.Source, &t.Funds, &t.Population, &t.Capacity,
			&t.Buildings, &t.Errors); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
