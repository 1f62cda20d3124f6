// Package isotime provides the timestamp type used on the sync wire protocol.
//
// Servers and older clients emit ISO-8601 timestamps in several shapes: with or without
// fractional seconds, and with or without a trailing "Z" or numeric offset. Time accepts all of
// them when decoding and always encodes RFC 3339 in UTC with millisecond precision.
package isotime
