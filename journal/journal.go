// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🗄️ GRAPH EVENT JOURNAL
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: SQLite history of drained graph events
//
// Description:
//   Records every event the consumer pulls off the ring: xruns, connection changes, port
//   churn. Rows are written in batched transactions so a burst of port registrations during
//   session load costs one commit per JournalBatch events.
//
// Notes:
//   - Only consumed events are recorded; nothing is ever re-enqueued from here
//   - Owned by the consumer goroutine; not safe for concurrent use
//   - The detail column holds the event as JSON for ad-hoc inspection
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"patchbay/events"
)

// ErrClosed reports use of a closed journal.
var ErrClosed = errors.New("journal: closed")

// Journal is a batched sqlite writer for graph events.
type Journal struct {
	db *sql.DB

	// Open transaction and its prepared insert; nil between batches
	tx     *sql.Tx
	insert *sql.Stmt

	batch    int // Events per transaction
	inBatch  int // Events in the open transaction
	recorded uint64
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Open opens or creates the journal at path. batch <= 0 commits every event.
func Open(path string, batch int) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// One writer; a second connection would only contend for the file lock.
	db.SetMaxOpenConns(1)

	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: schema: %w", err)
	}

	if batch <= 0 {
		batch = 1
	}
	return &Journal{db: db, batch: batch}, nil
}

func configure(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL", // Losing the last batch on power loss is acceptable
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}
	return nil
}

func initializeSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS graph_events (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		kind        TEXT    NOT NULL,
		frame       INTEGER NOT NULL,
		value       INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		peer        TEXT    NOT NULL,
		detail      TEXT    NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS graph_events_kind ON graph_events(kind);
	`
	_, err := db.Exec(schema)
	return err
}

// Close commits any pending batch and closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return ErrClosed
	}
	err := j.Flush()
	if cerr := j.db.Close(); err == nil {
		err = cerr
	}
	j.db = nil
	return err
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WRITES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Record appends ev to the current batch, committing when the batch is full.
func (j *Journal) Record(ev events.Event) error {
	if j.db == nil {
		return ErrClosed
	}
	if err := ev.Check(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	detail, err := ev.JSON()
	if err != nil {
		return fmt.Errorf("journal: encode %v: %w", ev.Kind, err)
	}

	if j.tx == nil {
		if err := j.begin(); err != nil {
			return err
		}
	}

	_, err = j.insert.Exec(
		ev.Kind.String(),
		int64(ev.Frame),
		int64(ev.Value),
		ev.Name,
		ev.Peer,
		string(detail),
		time.Now().UnixNano(),
	)
	if err != nil {
		j.rollback()
		return fmt.Errorf("journal: insert: %w", err)
	}

	j.recorded++
	if j.inBatch++; j.inBatch >= j.batch {
		return j.Flush()
	}
	return nil
}

// Flush commits the open batch, if any.
func (j *Journal) Flush() error {
	if j.tx == nil {
		return nil
	}
	j.insert.Close()
	err := j.tx.Commit()
	j.tx, j.insert, j.inBatch = nil, nil, 0
	if err != nil {
		return fmt.Errorf("journal: commit: %w", err)
	}
	return nil
}

// Recorded returns the number of events accepted by Record, committed or
// pending. A failed insert rolls back the open batch and its rows no longer count.
func (j *Journal) Recorded() uint64 {
	return j.recorded
}

func (j *Journal) begin() error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("journal: begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO graph_events
		(kind, frame, value, name, peer, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("journal: prepare: %w", err)
	}
	j.tx, j.insert, j.inBatch = tx, stmt, 0
	return nil
}

// rollback discards the open batch along with every row it held.
func (j *Journal) rollback() {
	j.recorded -= uint64(j.inBatch)
	j.insert.Close()
	j.tx.Rollback()
	j.tx, j.insert, j.inBatch = nil, nil, 0
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// QUERIES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Recent returns up to n of the latest events, newest first.
// Pending rows are committed first so they are visible.
func (j *Journal) Recent(n int) ([]events.Event, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}
	if err := j.Flush(); err != nil {
		return nil, err
	}

	rows, err := j.db.Query(`SELECT detail FROM graph_events ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	defer rows.Close()

	out := make([]events.Event, 0, n)
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		ev, err := events.ParseJSON([]byte(detail))
		if err != nil {
			return nil, fmt.Errorf("journal: decode detail: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountByKind returns how many events of kind k have been recorded.
func (j *Journal) CountByKind(k events.Kind) (int, error) {
	if j.db == nil {
		return 0, ErrClosed
	}
	if err := j.Flush(); err != nil {
		return 0, err
	}

	var count int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM graph_events WHERE kind = ?`, k.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("journal: count %v: %w", k, err)
	}
	return count, nil
}
