// Package influxdb records split run statistics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Each run produces one
// knx_split_run point plus one point per group address and per source
// device, so traffic on the bus can be charted across many recorded logs.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	n, err := client.WriteRunReport(ctx, report)
//
// Points are written synchronously in batches of batch_size. A rejected
// batch stops the write and is returned wrapped in ErrWriteFailed.
package influxdb
