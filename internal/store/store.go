// Package store handles SQLite persistence of exported lap sessions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lapwatch/internal/model"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when no export matches a ref.
	ErrNotFound = errors.New("export not found")
	// ErrAmbiguousRef is returned when a ref prefix matches several exports.
	ErrAmbiguousRef = errors.New("export ref is ambiguous")
)

// timeLayout is fixed width so exported_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for archived exports.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	newRef func() string
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now, newRef: uuid.NewString}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			id INTEGER PRIMARY KEY,
			ref TEXT NOT NULL UNIQUE,
			exported_at TEXT NOT NULL,
			lap_count INTEGER NOT NULL,
			total_ns INTEGER NOT NULL,
			average_ns INTEGER,
			csv TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS export_laps (
			export_id INTEGER NOT NULL,
			number INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL,
			cumulative_ns INTEGER NOT NULL,
			PRIMARY KEY (export_id, number)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exports_exported_at ON exports(exported_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertExport stores an export and its laps and returns the archived summary.
func (s *Store) InsertExport(ctx context.Context, rec model.ExportRecord) (model.ExportSummary, error) {
	exportedAt := rec.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = s.now()
	}
	snap := stopwatch.Snapshot{Total: rec.Total, Laps: rec.Laps}
	avg, hasAvg := snap.AverageLap()
	var avgCol sql.NullInt64
	if hasAvg {
		avgCol = sql.NullInt64{Int64: int64(avg), Valid: true}
	}
	summary := model.ExportSummary{
		Ref:        s.newRef(),
		ExportedAt: exportedAt,
		LapCount:   len(rec.Laps),
		Total:      rec.Total,
		Average:    avg,
		HasAverage: hasAvg,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ExportSummary{}, err
	}
	committed := false
	defer func() {
		if !committed {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO exports (ref, exported_at, lap_count, total_ns, average_ns, csv)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		summary.Ref,
		exportedAt.UTC().Format(timeLayout),
		summary.LapCount,
		int64(rec.Total),
		avgCol,
		rec.CSV,
	)
	if err != nil {
		return model.ExportSummary{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ExportSummary{}, err
	}
	summary.ID = id

	if len(rec.Laps) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO export_laps (export_id, number, duration_ns, cumulative_ns)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return model.ExportSummary{}, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, lap := range rec.Laps {
			if _, err := stmt.ExecContext(ctx, id, lap.Number, int64(lap.Duration), int64(lap.Cumulative)); err != nil {
				return model.ExportSummary{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return model.ExportSummary{}, err
	}
	committed = true
	return summary, nil
}

// ListExports returns archived exports oldest first, filtered by f.
func (s *Store) ListExports(ctx context.Context, f model.HistoryFilter) ([]model.ExportSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Since != nil {
		clauses = append(clauses, "exported_at >= ?")
		args = append(args, f.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ref, exported_at, lap_count, total_ns, average_ns
		FROM exports
		WHERE %s
		ORDER BY exported_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var exports []model.ExportSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if f.Last > 0 && len(exports) > f.Last {
		exports = exports[len(exports)-f.Last:]
	}
	return exports, nil
}

// GetExport loads the export whose ref starts with refPrefix.
func (s *Store) GetExport(ctx context.Context, refPrefix string) (model.ExportDetail, error) {
	refPrefix = strings.TrimSpace(refPrefix)
	if refPrefix == "" {
		return model.ExportDetail{}, ErrNotFound
	}
	matches, err := s.findExports(ctx, refPrefix)
	if err != nil {
		return model.ExportDetail{}, err
	}
	switch len(matches) {
	case 0:
		return model.ExportDetail{}, fmt.Errorf("%w: %s", ErrNotFound, refPrefix)
	case 1:
	default:
		return model.ExportDetail{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, refPrefix)
	}

	detail := matches[0]
	laps, err := s.listLaps(ctx, detail.ID)
	if err != nil {
		return model.ExportDetail{}, err
	}
	detail.Laps = laps
	return detail, nil
}

func (s *Store) findExports(ctx context.Context, refPrefix string) ([]model.ExportDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ref, exported_at, lap_count, total_ns, average_ns, csv
		 FROM exports
		 WHERE substr(ref, 1, ?) = ?
		 LIMIT 2`, len(refPrefix), refPrefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var matches []model.ExportDetail
	for rows.Next() {
		var detail model.ExportDetail
		summary, err := scanSummary(rows, &detail.CSV)
		if err != nil {
			return nil, err
		}
		detail.ExportSummary = summary
		matches = append(matches, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *Store) listLaps(ctx context.Context, exportID int64) ([]stopwatch.Lap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, duration_ns, cumulative_ns
		 FROM export_laps
		 WHERE export_id = ?
		 ORDER BY number DESC`, exportID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var laps []stopwatch.Lap
	for rows.Next() {
		var lap stopwatch.Lap
		var duration, cumulative int64
		if err := rows.Scan(&lap.Number, &duration, &cumulative); err != nil {
			return nil, err
		}
		lap.Duration = time.Duration(duration)
		lap.Cumulative = time.Duration(cumulative)
		laps = append(laps, lap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return laps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, extra ...any) (model.ExportSummary, error) {
	var summary model.ExportSummary
	var exportedAt string
	var total int64
	var avg sql.NullInt64
	dest := append([]any{&summary.ID, &summary.Ref, &exportedAt, &summary.LapCount, &total, &avg}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.ExportSummary{}, err
	}
	parsed, err := time.Parse(timeLayout, exportedAt)
	if err != nil {
		return model.ExportSummary{}, err
	}
	summary.ExportedAt = parsed
	summary.Total = time.Duration(total)
	if avg.Valid {
		summary.Average = time.Duration(avg.Int64)
		summary.HasAverage = true
	}
	return summary, nil
}
