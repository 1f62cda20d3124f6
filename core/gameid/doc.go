// Package gameid parses and builds the structured identifiers used for cryptogram games.
//
// A game is identified by a canonical 128-bit UUID. When serialized for the server the UUID is
// optionally wrapped with a variant prefix:
//
//	plain     <difficulty>-<uuid>
//	hardcore  <difficulty>-hardcore-<uuid>
//	daily     <difficulty>-daily-<yyyy-mm-dd>-<uuid>
//	bare      <uuid>
//
// Variants are modelled as a tagged union (Variant with a Kind) and each one has exactly one
// encoding. Decode never panics: malformed input yields a syncerr.InvalidIdentifier error and
// callers skip the record.
//
// # Usage
//
//	s := gameid.Encode(id, gameid.Daily("easy", day))
//	id, variant, err := gameid.Decode(s)
package gameid
