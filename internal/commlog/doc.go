// Package commlog reads and writes ETS bus-monitor telegram logs.
//
// A log is an XML document of the form:
//
//	<CommunicationLog xmlns="http://knx.org/xml/telegrams/01">
//	  <Telegram Timestamp="..." Service="L_Data.ind" RawData="2900BC..." />
//	  ...
//	</CommunicationLog>
//
// Documents are modelled as an explicit tree (Document, Telegram, Element,
// Attr) rather than a generic map. Attributes other than RawData are opaque
// and are written back unchanged and in their original order. Root children
// other than telegrams, such as <RecordStart>, are kept with their attributes
// and written ahead of the telegrams in every output.
//
// # Output Layout
//
// Render writes each telegram as a self-closing element on one line and
// appends its annotation as a comment aligned at fixed columns, so that
// annotations line up in a text editor:
//
//	    <Telegram ... RawData="..." />        <!-- GA: 0/7/1     ; QA: 1.1.12 -->
//
// The comment opener starts at CommentColumn and the ';' separator at
// SemicolonColumn. Both are zero-based with the indent included, so
// CommentColumn 165 is column 166 when counting from 1.
package commlog
