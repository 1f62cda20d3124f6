// Package integrity provides health checks of the local store and the diagnostics archive.
//
// Unlike the reconciliation cycle, which compares local games with the server, this package
// validates what is already on this side.
//
// # Checks Provided
//
//   - Structure: Checks that the diagnostics folders (payloads, reports) exist in the storage bucket.
//   - Schema: Validates that the local tables match the game store models (columns, declared types).
//   - Records: Scans the owner's stored games for non-canonical ids and broken game invariants.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/records : Runs records check.
package integrity
