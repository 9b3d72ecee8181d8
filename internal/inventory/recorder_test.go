package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/database"
	"github.com/nerrad567/knx-log-splitter/internal/splitter"
	_ "github.com/nerrad567/knx-log-splitter/migrations"
)

// openInventoryDB returns a migrated in-memory database.
func openInventoryDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

type warnLogger struct {
	warnings int
}

func (l *warnLogger) Debug(string, ...any) {}
func (l *warnLogger) Warn(string, ...any)  { l.warnings++ }

func TestRecorder_RecordTelegram(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.RecordTelegram("1.1.12", "0/7/1", true)
	rec.RecordTelegram("1.1.13", "0/7/1", true)
	rec.RecordTelegram("1.2.1", "2/3/5", false)
	rec.RecordTelegram("", "10/0/0", false)
	if err := rec.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	gas, err := rec.GroupAddresses(ctx, false)
	if err != nil {
		t.Fatalf("GroupAddresses() error = %v", err)
	}
	want := []GroupAddress{
		{Address: "0/7/1", Filtered: true, MessageCount: 2, LastSource: "1.1.13"},
		{Address: "2/3/5", Filtered: false, MessageCount: 1, LastSource: "1.2.1"},
		{Address: "10/0/0", Filtered: false, MessageCount: 1, LastSource: ""},
	}
	if len(gas) != len(want) {
		t.Fatalf("GroupAddresses() = %+v, want %+v", gas, want)
	}
	for i := range want {
		if gas[i] != want[i] {
			t.Errorf("GroupAddresses()[%d] = %+v, want %+v", i, gas[i], want[i])
		}
	}

	devices, err := rec.DeviceCount(ctx)
	if err != nil {
		t.Fatalf("DeviceCount() error = %v", err)
	}
	if devices != 3 {
		t.Errorf("DeviceCount() = %d, want 3", devices)
	}
}

func TestRecorder_FilteredOnly(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.RecordTelegram("1.1.1", "0/7/1", true)
	rec.RecordTelegram("1.1.1", "1/0/0", false)
	if err := rec.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	gas, err := rec.GroupAddresses(ctx, true)
	if err != nil {
		t.Fatalf("GroupAddresses() error = %v", err)
	}
	if len(gas) != 1 || gas[0].Address != "0/7/1" {
		t.Errorf("GroupAddresses(filteredOnly) = %+v", gas)
	}
}

func TestRecorder_AccumulatesAcrossRuns(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	for run := 0; run < 2; run++ {
		if err := rec.Start(ctx); err != nil {
			t.Fatalf("Start() run %d error = %v", run, err)
		}
		rec.RecordTelegram("1.1.1", "0/7/1", run == 0)
		if err := rec.Commit(); err != nil {
			t.Fatalf("Commit() run %d error = %v", run, err)
		}
	}

	gas, err := rec.GroupAddresses(ctx, false)
	if err != nil {
		t.Fatalf("GroupAddresses() error = %v", err)
	}
	if len(gas) != 1 || gas[0].MessageCount != 2 {
		t.Fatalf("GroupAddresses() = %+v, want one address seen twice", gas)
	}
	if gas[0].Filtered {
		t.Error("filtered flag should follow the latest run")
	}
}

func TestRecorder_Rollback(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.RecordTelegram("1.1.1", "0/7/1", true)
	rec.Rollback()

	count, err := rec.GroupAddressCount(ctx)
	if err != nil {
		t.Fatalf("GroupAddressCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("GroupAddressCount() = %d after rollback, want 0", count)
	}

	// A second Rollback is a no-op.
	rec.Rollback()
}

func TestRecorder_InvalidAddressCounted(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)
	log := &warnLogger{}
	rec.SetLogger(log)

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.RecordTelegram("1.1.1", "IGNORE", false)
	rec.RecordTelegram("garbage", "0/7/1", true)

	if rec.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", rec.Failures())
	}
	if log.warnings != 1 {
		t.Errorf("warnings = %d, want 1", log.warnings)
	}
	if err := rec.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	devices, err := rec.DeviceCount(ctx)
	if err != nil {
		t.Fatalf("DeviceCount() error = %v", err)
	}
	if devices != 0 {
		t.Errorf("DeviceCount() = %d, invalid source should be skipped", devices)
	}
}

func TestRecorder_RecordRun(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	report := &splitter.Report{
		Stats:      splitter.Stats{Telegrams: 10, Filtered: 4, Other: 5, Skipped: 1},
		RunID:      "run-0a1b2c3d",
		Input:      "bus.xml",
		Filters:    []string{"0/7/", "1/2/"},
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationMS: 12,
	}

	if err := rec.RecordRun(ctx, report); !errors.Is(err, ErrNotStarted) {
		t.Errorf("RecordRun() before Start error = %v, want ErrNotStarted", err)
	}

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := rec.RecordRun(ctx, report); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := rec.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	var filters string
	var telegrams int
	if err := db.QueryRowContext(ctx, `SELECT filters, telegrams FROM knx_split_runs`).Scan(&filters, &telegrams); err != nil {
		t.Fatalf("reading run: %v", err)
	}
	if filters != "0/7/,1/2/" || telegrams != 10 {
		t.Errorf("run row = (%q, %d)", filters, telegrams)
	}

	runs, err := rec.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount() error = %v", err)
	}
	if runs != 1 {
		t.Errorf("RunCount() = %d, want 1", runs)
	}
}

func TestRecorder_Lifecycle(t *testing.T) {
	db := openInventoryDB(t)
	ctx := context.Background()
	rec := NewRecorder(db.DB)

	// Recording before Start is ignored.
	rec.RecordTelegram("1.1.1", "0/7/1", true)

	if err := rec.Commit(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Commit() before Start error = %v, want ErrNotStarted", err)
	}

	if err := rec.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := rec.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	if err := rec.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	count, err := rec.GroupAddressCount(ctx)
	if err != nil {
		t.Fatalf("GroupAddressCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("GroupAddressCount() = %d, want 0", count)
	}
}

func TestRecorder_ImplementsAddressRecorder(t *testing.T) {
	var _ splitter.AddressRecorder = (*Recorder)(nil)
}
