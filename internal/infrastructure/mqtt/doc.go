// Package mqtt publishes split reports to an MQTT broker.
//
// This package manages:
//   - Connection to the broker, optionally over TLS
//   - Retained publishing of the latest report and per-address counts
//   - Last Will and Testament (LWT) on the status topic
//
// Topics live below the configured prefix (default "knxsplit"):
//
//	knxsplit/status          online/offline JSON status (retained)
//	knxsplit/report          latest split report as JSON (retained)
//	knxsplit/group/0/7/12    telegram count for 0/7/12 (retained)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishReport(report, report.GroupAddresses)
//
// Broker failures never fail a split; the caller logs them.
package mqtt
