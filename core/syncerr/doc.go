// Package syncerr defines the error taxonomy shared by the reconciliation engine.
//
// Every failure the engine can observe is classified into one Kind. The Kind decides how the
// failure propagates:
//
//   - AuthenticationRequired: no access token is available. The cycle is skipped and is not
//     treated as an error state.
//   - Transport, ServerRejected, DecodeFailed: cycle-level or item-level failures that are
//     retried on the next trigger.
//   - InvalidIdentifier: a game id could not be parsed. Only that record is skipped.
//   - LocalRecordMissing: an upload target vanished from the local store. Only that item fails.
//
// None of these kinds is fatal to the host process.
//
// # Usage
//
//	err := syncerr.New(syncerr.Transport, "request_plan", "", err)
//	if syncerr.KindOf(err) == syncerr.InvalidIdentifier {
//	    // skip the record
//	}
package syncerr
