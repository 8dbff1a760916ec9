// Package sqlite keeps a queryable history of scan runs. The flat JSON
// stores are overwritten wholesale each run; the archive preserves every
// snapshot so trader stats can be compared across runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/drexon5/polymarket-trader-analyzer/internal/hashutil"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

const defaultPath = "data/traders.db"

// Archive wraps a SQLite DB connection.
type Archive struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Archive, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Archive{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the archive.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the DB.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

const snapshotSchemaSQL = `
CREATE TABLE IF NOT EXISTS trader_snapshots (
	address TEXT NOT NULL,
	run_at TEXT NOT NULL,
	username TEXT,
	pnl REAL,
	volume REAL,
	trades INTEGER,
	avg_bet REAL,
	win_rate REAL,
	wins INTEGER,
	losses INTEGER,
	detailed_analysis INTEGER,
	content_hash TEXT,
	PRIMARY KEY (address, run_at)
);
CREATE INDEX IF NOT EXISTS trader_snapshots_run_idx ON trader_snapshots(run_at);
`

// CreateTables ensures the snapshot table exists.
func (a *Archive) CreateTables(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, snapshotSchemaSQL)
	return err
}

const snapshotUpsertSQL = `
INSERT INTO trader_snapshots (
	address, run_at, username, pnl, volume, trades, avg_bet, win_rate, wins, losses,
	detailed_analysis, content_hash
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(address, run_at) DO UPDATE SET
	username=excluded.username,
	pnl=excluded.pnl,
	volume=excluded.volume,
	trades=excluded.trades,
	avg_bet=excluded.avg_bet,
	win_rate=excluded.win_rate,
	wins=excluded.wins,
	losses=excluded.losses,
	detailed_analysis=excluded.detailed_analysis,
	content_hash=excluded.content_hash;
`

// ArchiveRun records the summaries produced by one scan run.
func (a *Archive) ArchiveRun(ctx context.Context, runAt time.Time, summaries []models.TraderSummary) error {
	if a == nil || a.db == nil || len(summaries) == 0 {
		return nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, snapshotUpsertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	ts := runAt.UTC().Format(time.RFC3339Nano)
	for _, s := range summaries {
		if _, err := stmt.ExecContext(ctx,
			s.Address,
			ts,
			s.Username,
			s.PnL,
			s.Volume,
			s.Trades,
			s.AvgBet,
			s.WinRate,
			s.Wins,
			s.Losses,
			boolToInt(s.DetailedAnalysis),
			hashutil.Summary(s),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SnapshotCount reports the number of archived rows, for run summaries.
func (a *Archive) SnapshotCount(ctx context.Context) (int, error) {
	if a == nil || a.db == nil {
		return 0, nil
	}
	var count int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trader_snapshots;`).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
