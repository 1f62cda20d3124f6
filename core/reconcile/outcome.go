package reconcile

// Outcome is the classification of a finished cycle.
type Outcome string

const (
	// OutcomeSkipped means the strategy decided not to sync.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeNothingToSync means the plan contained no network operations.
	OutcomeNothingToSync Outcome = "nothing_to_sync"
	// OutcomeSucceeded means every operation succeeded.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomePartial means some operations failed, below the failure threshold.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the failure ratio reached the threshold.
	OutcomeFailed Outcome = "failed"
	// OutcomeUnauthenticated means no access token was available.
	OutcomeUnauthenticated Outcome = "unauthenticated"
	// OutcomeRequestFailed means the snapshot or the plan request failed.
	OutcomeRequestFailed Outcome = "request_failed"
	// OutcomeCancelled means the context ended before the cycle ran.
	OutcomeCancelled Outcome = "cancelled"
)

// Successful reports whether the outcome may advance LastSuccessfulSync.
func (o Outcome) Successful() bool {
	return o == OutcomeNothingToSync || o == OutcomeSucceeded
}

// Classify maps succeeded/failed counts to an outcome.
// A failure ratio exactly at the threshold counts as Failed.
func Classify(succeeded, failed int, threshold float64) Outcome {
	total := succeeded + failed
	switch {
	case total == 0:
		return OutcomeNothingToSync
	case failed == 0:
		return OutcomeSucceeded
	case float64(failed) < threshold*float64(total):
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}
