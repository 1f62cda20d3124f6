package reconcile

import (
	"fmt"
	"time"
)

// ActionType is what the strategy decided to do for a trigger.
type ActionType string

const (
	ActionSkip        ActionType = "skip"
	ActionIncremental ActionType = "incremental"
	ActionFull        ActionType = "full"
	ActionDeferred    ActionType = "deferred"
)

// Decision is the output of Select.
type Decision struct {
	// Action is the selected action.
	Action ActionType `json:"action"`

	// Reason explains the decision in plain words.
	Reason string `json:"reason"`

	// Delay is how long a deferred decision waits before running.
	Delay time.Duration `json:"delay,omitempty"`

	// Then is the sync type a deferred decision runs once the delay elapsed.
	Then SyncType `json:"then,omitempty"`
}

// SyncType returns the sync type the decision will execute, or "" for skip.
func (d Decision) SyncType() SyncType {
	switch d.Action {
	case ActionFull:
		return SyncFull
	case ActionIncremental:
		return SyncIncremental
	case ActionDeferred:
		return d.Then
	default:
		return ""
	}
}

func skip(reason string) Decision {
	return Decision{Action: ActionSkip, Reason: reason}
}

func full(reason string) Decision {
	return Decision{Action: ActionFull, Reason: reason}
}

func incremental(reason string) Decision {
	return Decision{Action: ActionIncremental, Reason: reason}
}

func deferred(delay time.Duration, then SyncType, reason string) Decision {
	return Decision{Action: ActionDeferred, Reason: reason, Delay: delay, Then: then}
}

// Select maps a trigger and the current bookkeeping to a decision.
// It is pure: the only state change it returns is the incremented launch count for AppLaunch.
func Select(trigger Trigger, bk Bookkeeping, now time.Time, policy Config) (Decision, Bookkeeping) {
	policy = policy.withDefaults()

	within := func(t time.Time, window time.Duration) bool {
		return !t.IsZero() && now.Sub(t) < window
	}

	switch trigger {
	case TriggerAppLaunch:
		bk.LaunchCount++
		switch {
		case bk.LastFullSync.IsZero():
			return full("no previous full sync"), bk
		case bk.LastSuccessfulSync.IsZero():
			return full("no previous successful sync"), bk
		case bk.LaunchCount%policy.LaunchFullEvery == 0:
			return full(fmt.Sprintf("periodic full sync on launch %d", bk.LaunchCount)), bk
		case within(bk.LastSuccessfulSync, policy.LaunchSkipWindow):
			return skip("recent successful sync"), bk
		default:
			return deferred(policy.LaunchDeferDelay, SyncIncremental, "launch refresh"), bk
		}

	case TriggerUserLogin:
		if within(bk.LastSuccessfulSync, policy.LoginRecentWindow) {
			return deferred(policy.LoginRecentDelay, SyncIncremental, "login after recent sync"), bk
		}
		return deferred(policy.LoginStaleDelay, SyncFull, "login with stale data"), bk

	case TriggerGameCompletion:
		if within(bk.LastSuccessfulSync, policy.CompletionSkipWindow) {
			return skip("synced moments ago"), bk
		}
		return incremental("game completed"), bk

	case TriggerManual:
		if within(bk.LastSuccessfulSync, policy.ManualRecentWindow) {
			return incremental("manual sync after recent sync"), bk
		}
		return full("manual sync"), bk

	case TriggerBackground:
		if within(bk.LastSuccessfulSync, policy.BackgroundSkipWindow) {
			return skip("recent successful sync"), bk
		}
		return incremental("background refresh"), bk

	default:
		return skip(fmt.Sprintf("unknown trigger %q", trigger)), bk
	}
}
