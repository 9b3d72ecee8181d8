// Package inventory keeps a SQLite record of the group addresses and
// source devices found in split telegram logs.
//
// Each split run upserts every decoded group address together with the
// routing decision of its latest telegram, so repeated runs over daily
// bus logs build up a picture of which addresses are active on the bus.
package inventory
