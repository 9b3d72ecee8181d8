package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/knx-log-splitter/internal/knx"
	"github.com/nerrad567/knx-log-splitter/internal/splitter"
)

// Logger defines the logging interface for the recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Recorder accumulates the group addresses and source devices seen in split
// runs. All writes of one run share a transaction opened by Start and
// finished by Commit or Rollback.
//
// Recorder implements splitter.AddressRecorder. It is not safe for
// concurrent use. The query methods use their own connection, so on a
// single-connection database they must not be called while a run is open.
type Recorder struct {
	db     *sql.DB
	logger Logger

	tx               *sql.Tx
	gaUpsertStmt     *sql.Stmt
	deviceUpsertStmt *sql.Stmt

	seen     time.Time
	failures int
}

// GroupAddress is one row of the group address inventory.
type GroupAddress struct {
	Address      string
	Filtered     bool
	MessageCount int
	LastSource   string
}

// NewRecorder creates a recorder on a database migrated with the
// knx_group_addresses, knx_devices and knx_split_runs tables.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// Start opens the run transaction and prepares the upsert statements.
// Must be called before RecordTelegram.
func (r *Recorder) Start(ctx context.Context) error {
	if r.tx != nil {
		return ErrAlreadyStarted
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting inventory transaction: %w", err)
	}

	gaStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knx_group_addresses
			(group_address, main_group, middle_group, sub_group, filtered, message_count, first_seen, last_seen, last_source)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(group_address) DO UPDATE SET
			filtered = excluded.filtered,
			message_count = message_count + 1,
			last_seen = excluded.last_seen,
			last_source = CASE WHEN excluded.last_source = '' THEN last_source ELSE excluded.last_source END
	`)
	if err != nil {
		tx.Rollback() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("preparing GA upsert statement: %w", err)
	}

	deviceStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knx_devices (physical_address, area, line, device, message_count, first_seen, last_seen)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(physical_address) DO UPDATE SET
			message_count = message_count + 1,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		gaStmt.Close()
		tx.Rollback() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("preparing device upsert statement: %w", err)
	}

	r.tx = tx
	r.gaUpsertStmt = gaStmt
	r.deviceUpsertStmt = deviceStmt
	r.seen = time.Now().UTC()
	r.failures = 0
	return nil
}

// RecordTelegram records the source device and destination group address
// of one decoded data telegram. Errors are logged and counted, never
// returned, so a broken inventory cannot abort a split.
//
// Parameters:
//   - source: Physical address of the sender (e.g., "1.1.5"), may be empty
//   - groupAddress: Destination group address (e.g., "0/7/12")
//   - filtered: Whether the telegram went to the filtered output
func (r *Recorder) RecordTelegram(source, groupAddress string, filtered bool) {
	if r.tx == nil {
		return
	}
	seen := r.seen.Format(time.RFC3339)

	ga, err := knx.ParseGroupAddress(groupAddress)
	if err != nil {
		r.recordFailure("parsing group address", err)
		return
	}

	lastSource := ""
	if pa, err := knx.ParsePhysicalAddress(source); err == nil && source != "0.0.0" {
		lastSource = source
		if _, err := r.deviceUpsertStmt.Exec(source, pa.Area, pa.Line, pa.Device, seen, seen); err != nil {
			r.recordFailure("recording device", err)
		}
	}

	if _, err := r.gaUpsertStmt.Exec(
		groupAddress, ga.Main, ga.Middle, ga.Sub, boolToInt(filtered), seen, seen, lastSource,
	); err != nil {
		r.recordFailure("recording group address", err)
	}
}

// RecordRun stores the summary of a finished split inside the run transaction.
func (r *Recorder) RecordRun(ctx context.Context, report *splitter.Report) error {
	if r.tx == nil {
		return ErrNotStarted
	}

	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO knx_split_runs
			(run_id, input, filters, telegrams, filtered, other, skipped, acknowledgements, undecodable, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.Input,
		strings.Join(report.Filters, ","),
		report.Telegrams,
		report.Filtered,
		report.Other,
		report.Skipped,
		report.Acknowledgements,
		report.Undecodable,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("recording split run: %w", err)
	}
	return nil
}

// Commit makes the run's writes permanent and releases the statements.
func (r *Recorder) Commit() error {
	if r.tx == nil {
		return ErrNotStarted
	}
	tx := r.tx
	r.closeStatements()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing inventory: %w", err)
	}
	if r.logger != nil {
		r.logger.Debug("inventory committed", "failures", r.failures)
	}
	return nil
}

// Rollback discards the run's writes. It is a no-op if no run is open.
func (r *Recorder) Rollback() {
	if r.tx == nil {
		return
	}
	tx := r.tx
	r.closeStatements()
	tx.Rollback() //nolint:errcheck // Nothing useful to do on failure
}

// Failures returns how many telegrams of the current run could not be recorded.
func (r *Recorder) Failures() int {
	return r.failures
}

// GroupAddresses lists the inventory ordered by address. With filteredOnly
// set, only addresses routed to the filtered output in their latest run are
// returned.
func (r *Recorder) GroupAddresses(ctx context.Context, filteredOnly bool) ([]GroupAddress, error) {
	query := `SELECT group_address, filtered, message_count, last_source FROM knx_group_addresses`
	if filteredOnly {
		query += ` WHERE filtered = 1`
	}
	query += ` ORDER BY main_group, middle_group, sub_group`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying group addresses: %w", err)
	}
	defer rows.Close()

	var out []GroupAddress
	for rows.Next() {
		var ga GroupAddress
		var filtered int
		if err := rows.Scan(&ga.Address, &filtered, &ga.MessageCount, &ga.LastSource); err != nil {
			return nil, fmt.Errorf("scanning group address: %w", err)
		}
		ga.Filtered = filtered == 1
		out = append(out, ga)
	}
	return out, rows.Err()
}

// GroupAddressCount returns the number of known group addresses.
func (r *Recorder) GroupAddressCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knx_group_addresses`).Scan(&count)
	return count, err
}

// DeviceCount returns the number of known devices.
func (r *Recorder) DeviceCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knx_devices`).Scan(&count)
	return count, err
}

// RunCount returns the number of recorded split runs.
func (r *Recorder) RunCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knx_split_runs`).Scan(&count)
	return count, err
}

func (r *Recorder) closeStatements() {
	if r.gaUpsertStmt != nil {
		r.gaUpsertStmt.Close()
		r.gaUpsertStmt = nil
	}
	if r.deviceUpsertStmt != nil {
		r.deviceUpsertStmt.Close()
		r.deviceUpsertStmt = nil
	}
	r.tx = nil
}

func (r *Recorder) recordFailure(msg string, err error) {
	r.failures++
	if r.logger != nil {
		r.logger.Warn(msg, "error", err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
