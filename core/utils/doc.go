// Package utils provides common conversion helpers.
//
// The sync bookkeeping is persisted as string key/value rows; the helpers here turn those
// values back into integers, booleans and timestamps without failing on legacy formats.
package utils
