package influxdb

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/knx-log-splitter/internal/splitter"
)

// Measurement names.
const (
	measurementRun          = "knx_split_run"
	measurementGroupAddress = "knx_split_group_address"
	measurementSource       = "knx_split_source"
)

// BuildRunPoints converts a split report into points, all stamped with the
// run start time:
//
//	knx_split_run,input=log.xml,filters=0/7/ telegrams=120i,filtered=40i,...
//	knx_split_group_address,group_address=0/7/12,main_group=0,filtered=true count=3i
//	knx_split_source,physical_address=1.1.4 count=7i
func BuildRunPoints(report *splitter.Report) []*write.Point {
	if report == nil {
		return nil
	}

	ts := report.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	input := filepath.Base(report.Input)
	filters := splitter.NewFilterSet(report.Filters...)

	points := make([]*write.Point, 0, 1+len(report.GroupAddresses)+len(report.Sources))

	points = append(points, write.NewPoint(
		measurementRun,
		map[string]string{
			"input":   input,
			"filters": filters.String(),
		},
		map[string]interface{}{
			"telegrams":        report.Telegrams,
			"skipped":          report.Skipped,
			"filtered":         report.Filtered,
			"other":            report.Other,
			"acknowledgements": report.Acknowledgements,
			"undecodable":      report.Undecodable,
			"duration_ms":      report.DurationMS,
			"run_id":           report.RunID,
		},
		ts,
	))

	for ga, count := range report.GroupAddresses {
		main, _, _ := strings.Cut(ga, "/")
		points = append(points, write.NewPoint(
			measurementGroupAddress,
			map[string]string{
				"input":         input,
				"group_address": ga,
				"main_group":    main,
				"filtered":      strconv.FormatBool(filters.Matches(ga)),
			},
			map[string]interface{}{"count": count},
			ts,
		))
	}

	for pa, count := range report.Sources {
		points = append(points, write.NewPoint(
			measurementSource,
			map[string]string{
				"input":            input,
				"physical_address": pa,
			},
			map[string]interface{}{"count": count},
			ts,
		))
	}

	return points
}

// WriteRunReport writes the points for report and returns how many reached
// the server.
func (c *Client) WriteRunReport(ctx context.Context, report *splitter.Report) (int, error) {
	return c.writePoints(ctx, BuildRunPoints(report))
}
