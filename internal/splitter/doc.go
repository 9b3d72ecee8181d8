// Package splitter partitions a KNX telegram log into two output files.
//
// Every data telegram is routed to the "filtered" file when its decoded
// group address starts with one of the configured prefixes, and to the
// "other" file (knx_tel.xml) otherwise. Acknowledgement frames follow the
// data telegram they belong to. Telegrams whose group address cannot be
// decoded always go to the filtered file, marked as IGNORE.
//
// Each data telegram line carries a column-aligned comment naming its group
// address and the physical address of the sending device:
//
//	<Telegram ... RawData="..." />      <!-- GA: 0/7/12     ; QA: 1.1.5 -->
//
// Typical use:
//
//	s := splitter.New(splitter.Config{
//	    InputPath: "bus.xml",
//	    Filters:   splitter.NewFilterSet("0/7/"),
//	})
//	report, err := s.Run(ctx)
package splitter
