package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"buildtrack"
	"buildtrack/internal/build"
	"buildtrack/internal/validate"

	"github.com/containerd/errdefs"
	_ "modernc.org/sqlite"
)

var _ build.StepStore = (*StepsStore)(nil)

// StepsStore persists build steps in a local SQLite database. It is the
// backend the in-memory fake stands in for; both sides of the port keep
// the same absence and no-op semantics.
type StepsStore struct {
	db    *sql.DB
	clock build.Clock
}

// Open opens the steps database at path, creating file and schema as
// needed. A nil clock falls back to the system clock.
func Open(path string, clock build.Clock) (*StepsStore, error) {
	if clock == nil {
		clock = build.RealClock{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create steps db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open steps db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set steps db journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set steps db busy timeout: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	buildid INTEGER NOT NULL,
	number INTEGER NOT NULL,
	name TEXT NOT NULL,
	state_string TEXT NOT NULL DEFAULT '',
	started_at INTEGER,
	locks_acquired_at INTEGER,
	complete_at INTEGER,
	results INTEGER,
	urls_json TEXT NOT NULL DEFAULT '[]',
	hidden INTEGER NOT NULL DEFAULT 0,
	UNIQUE(buildid, number),
	UNIQUE(buildid, name)
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize steps schema: %w", err)
	}

	slog.Debug("steps database ready", "component", "steps-db", "path", path)
	return &StepsStore{db: db, clock: clock}, nil
}

func (s *StepsStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const stepColumns = `id, buildid, number, name, state_string, started_at, locks_acquired_at, complete_at, results, urls_json, hidden`

func (s *StepsStore) AddStep(ctx context.Context, buildID int64, name, stateString string) (build.StepRef, error) {
	if err := validate.Identifier("name", name, validate.IdentifierLimit); err != nil {
		return build.StepRef{}, err
	}
	if err := validate.Text("state_string", stateString); err != nil {
		return build.StepRef{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return build.StepRef{}, fmt.Errorf("begin add step transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var number int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number) + 1, 0) FROM steps WHERE buildid = ?`, buildID,
	).Scan(&number); err != nil {
		return build.StepRef{}, fmt.Errorf("allocate step number: %w", err)
	}

	final, err := nextStepName(ctx, tx, buildID, name)
	if err != nil {
		return build.StepRef{}, err
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO steps (
	buildid,
	number,
	name,
	state_string,
	urls_json
) VALUES (?, ?, ?, ?, ?)`,
		buildID, number, final, stateString, build.EmptyURLs)
	if err != nil {
		return build.StepRef{}, fmt.Errorf("insert step %q: %w", final, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return build.StepRef{}, fmt.Errorf("read inserted step id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return build.StepRef{}, fmt.Errorf("commit add step transaction: %w", err)
	}

	return build.StepRef{ID: id, Number: number, Name: final}, nil
}

func (s *StepsStore) GetStep(ctx context.Context, id int64) (buildtrack.Step, bool, error) {
	row, err := scanStep(s.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return buildtrack.Step{}, false, nil
		}
		return buildtrack.Step{}, false, fmt.Errorf("query step %d: %w", id, err)
	}

	step, err := build.ProjectStep(row)
	if err != nil {
		return buildtrack.Step{}, false, err
	}
	return step, true, nil
}

func (s *StepsStore) FindStep(ctx context.Context, buildID int64, filter build.StepFilter) (buildtrack.Step, bool, error) {
	if filter.Empty() {
		return buildtrack.Step{}, false, fmt.Errorf("find step in build %d: filter must set number or name: %w", buildID, errdefs.ErrInvalidArgument)
	}

	query := `SELECT ` + stepColumns + ` FROM steps WHERE buildid = ?`
	args := []any{buildID}
	if filter.Number != nil {
		query += ` AND number = ?`
		args = append(args, *filter.Number)
	}
	if filter.Name != nil {
		query += ` AND name = ?`
		args = append(args, *filter.Name)
	}
	query += ` ORDER BY id LIMIT 1`

	row, err := scanStep(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return buildtrack.Step{}, false, nil
		}
		return buildtrack.Step{}, false, fmt.Errorf("find step in build %d: %w", buildID, err)
	}

	step, err := build.ProjectStep(row)
	if err != nil {
		return buildtrack.Step{}, false, err
	}
	return step, true, nil
}

func (s *StepsStore) ListBuildSteps(ctx context.Context, buildID int64) ([]buildtrack.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE buildid = ? ORDER BY number`, buildID)
	if err != nil {
		return nil, fmt.Errorf("list steps for build %d: %w", buildID, err)
	}
	defer rows.Close()

	out := make([]buildtrack.Step, 0)
	for rows.Next() {
		row, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step row: %w", err)
		}
		step, err := build.ProjectStep(row)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step rows: %w", err)
	}
	return out, nil
}

func (s *StepsStore) StartStep(ctx context.Context, id int64, startedAt time.Time, locksAcquired bool) error {
	at := startedAt.Unix()
	var err error
	if locksAcquired {
		_, err = s.db.ExecContext(ctx,
			`UPDATE steps SET started_at = ?, locks_acquired_at = ? WHERE id = ?`, at, at, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE steps SET started_at = ? WHERE id = ?`, at, id)
	}
	if err != nil {
		return fmt.Errorf("start step %d: %w", id, err)
	}
	return nil
}

func (s *StepsStore) SetStepLocksAcquiredAt(ctx context.Context, id int64, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE steps SET locks_acquired_at = ? WHERE id = ?`, at.Unix(), id); err != nil {
		return fmt.Errorf("set step %d locks acquired: %w", id, err)
	}
	return nil
}

func (s *StepsStore) SetStepStateString(ctx context.Context, id int64, state string) error {
	if err := validate.Text("state_string", state); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE steps SET state_string = ? WHERE id = ?`, state, id); err != nil {
		return fmt.Errorf("set step %d state string: %w", id, err)
	}
	return nil
}

func (s *StepsStore) AddStepURL(ctx context.Context, id int64, name, url string) error {
	if err := validate.Identifier("url name", name, validate.IdentifierLimit); err != nil {
		return err
	}
	if err := validate.Text("url", url); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add url transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var urlsJSON string
	err = tx.QueryRowContext(ctx, `SELECT urls_json FROM steps WHERE id = ?`, id).Scan(&urlsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("query step %d urls: %w", id, err)
	}

	encoded, changed, err := build.AppendStepURL(urlsJSON, name, url)
	if err != nil {
		return fmt.Errorf("add url to step %d: %w", id, err)
	}
	if !changed {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE steps SET urls_json = ? WHERE id = ?`, encoded, id); err != nil {
		return fmt.Errorf("update step %d urls: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add url transaction: %w", err)
	}
	return nil
}

func (s *StepsStore) FinishStep(ctx context.Context, id int64, results buildtrack.Results, hidden bool) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE steps SET complete_at = ?, results = ?, hidden = ? WHERE id = ?`,
		s.clock.Now().Unix(), int64(results), boolToInt(hidden), id); err != nil {
		return fmt.Errorf("finish step %d: %w", id, err)
	}
	return nil
}

// SeedSteps loads raw rows with explicit ids, replacing any existing row
// that collides on id or on the per-build uniqueness constraints. Used
// by fixture import; the normal write path never supplies ids.
func (s *StepsStore) SeedSteps(ctx context.Context, rows []build.StepRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO steps (
	id,
	buildid,
	number,
	name,
	state_string,
	started_at,
	locks_acquired_at,
	complete_at,
	results,
	urls_json,
	hidden
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		urlsJSON := row.URLsJSON
		if urlsJSON == "" {
			urlsJSON = build.EmptyURLs
		}
		if _, err := stmt.ExecContext(
			ctx,
			row.ID,
			row.BuildID,
			row.Number,
			row.Name,
			row.StateString,
			row.StartedAt,
			row.LocksAcquiredAt,
			row.CompleteAt,
			row.Results,
			urlsJSON,
			boolToInt(row.Hidden),
		); err != nil {
			return fmt.Errorf("seed step %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	slog.Debug("seeded step rows", "component", "steps-db", "rows", len(rows))
	return nil
}

// CountSteps reports how many steps the store holds.
func (s *StepsStore) CountSteps(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count steps: %w", err)
	}
	return n, nil
}

func nextStepName(ctx context.Context, tx *sql.Tx, buildID int64, name string) (string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM steps WHERE buildid = ?`, buildID)
	if err != nil {
		return "", fmt.Errorf("query step names for build %d: %w", buildID, err)
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return "", fmt.Errorf("scan step name: %w", err)
		}
		taken[n] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate step names: %w", err)
	}

	if _, ok := taken[name]; !ok {
		return name, nil
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStep(sc rowScanner) (build.StepRow, error) {
	var row build.StepRow
	var startedAt, locksAt, completeAt, results sql.NullInt64
	var hidden int
	if err := sc.Scan(
		&row.ID,
		&row.BuildID,
		&row.Number,
		&row.Name,
		&row.StateString,
		&startedAt,
		&locksAt,
		&completeAt,
		&results,
		&row.URLsJSON,
		&hidden,
	); err != nil {
		return build.StepRow{}, err
	}
	if startedAt.Valid {
		row.StartedAt = &startedAt.Int64
	}
	if locksAt.Valid {
		row.LocksAcquiredAt = &locksAt.Int64
	}
	if completeAt.Valid {
		row.CompleteAt = &completeAt.Int64
	}
	if results.Valid {
		row.Results = &results.Int64
	}
	row.Hidden = hidden != 0
	return row, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
