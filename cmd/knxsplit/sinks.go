package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/knx-log-splitter/migrations"

	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/config"
	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/database"
	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/influxdb"
	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/logging"
	"github.com/nerrad567/knx-log-splitter/internal/infrastructure/mqtt"
	"github.com/nerrad567/knx-log-splitter/internal/inventory"
	"github.com/nerrad567/knx-log-splitter/internal/splitter"
)

// Optional sinks. None of them can fail a split: errors are logged as
// warnings and the run still exits 0.

// inventoryRun holds the inventory database for one split.
type inventoryRun struct {
	db       *database.DB
	recorder *inventory.Recorder
	log      *logging.Logger
	done     bool
}

// openInventory opens and migrates the inventory database and starts the
// run transaction. It returns nil, nil when the inventory is disabled.
func openInventory(ctx context.Context, cfg config.InventoryConfig, log *logging.Logger) (*inventoryRun, error) {
	if !cfg.Enabled {
		return nil, nil //nolint:nilnil // disabled is not an error
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("migrating inventory: %w", err)
	}

	rec := inventory.NewRecorder(db.DB)
	rec.SetLogger(log)
	if err := rec.Start(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("starting inventory run: %w", err)
	}

	log.Debug("address inventory opened", "path", db.Path())
	return &inventoryRun{db: db, recorder: rec, log: log}, nil
}

// finish records the run summary and commits the run transaction.
func (r *inventoryRun) finish(ctx context.Context, report *splitter.Report) {
	if err := r.recorder.RecordRun(ctx, report); err != nil {
		r.log.Warn("recording split run failed", "error", err)
	}
	if err := r.recorder.Commit(); err != nil {
		r.log.Warn("committing address inventory failed", "error", err)
		return
	}
	r.done = true

	groups, gaErr := r.recorder.GroupAddressCount(ctx)
	devices, devErr := r.recorder.DeviceCount(ctx)
	runs, runErr := r.recorder.RunCount(ctx)
	if err := errors.Join(gaErr, devErr, runErr); err != nil {
		r.log.Warn("reading address inventory failed", "error", err)
		return
	}
	r.log.Info("address inventory updated",
		"path", r.db.Path(),
		"group_addresses", groups,
		"devices", devices,
		"runs", runs,
		"failures", r.recorder.Failures(),
	)
}

// close rolls back an unfinished run and closes the database.
func (r *inventoryRun) close() {
	if !r.done {
		r.recorder.Rollback()
	}
	if err := r.db.Close(); err != nil {
		r.log.Warn("closing address inventory failed", "error", err)
	}
}

// publishReport hands the finished report to MQTT and InfluxDB
// concurrently. Each sink logs its own failure.
func publishReport(ctx context.Context, cfg *config.Config, report *splitter.Report, log *logging.Logger) {
	var g errgroup.Group
	g.Go(func() error {
		err := publishMQTT(cfg.MQTT, report, log)
		if err != nil {
			log.Warn("report not published to mqtt", "error", err)
		}
		return err
	})
	g.Go(func() error {
		err := writeMetrics(ctx, cfg.InfluxDB, report, log)
		if err != nil {
			log.Warn("run not recorded in influxdb", "error", err)
		}
		return err
	})
	_ = g.Wait() //nolint:errcheck // logged per sink
}

// publishMQTT sends the report to the MQTT broker when enabled.
func publishMQTT(cfg config.MQTTConfig, report *splitter.Report, log *logging.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck // Close never fails

	if err := client.PublishReport(report, report.GroupAddresses); err != nil {
		return err
	}
	log.Info("report published",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"topic", client.Topics().Report(),
		"run_id", report.RunID,
	)
	return nil
}

// writeMetrics records the run in InfluxDB when enabled.
func writeMetrics(ctx context.Context, cfg config.InfluxDBConfig, report *splitter.Report, log *logging.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	client, err := influxdb.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck // Close never fails

	n, err := client.WriteRunReport(ctx, report)
	if err != nil {
		return err
	}

	log.Info("run recorded in influxdb", "url", cfg.URL, "bucket", cfg.Bucket, "points", n)
	return nil
}
