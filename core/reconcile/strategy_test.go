package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	policy := DefaultConfig()

	tests := []struct {
		name        string
		trigger     Trigger
		bk          Bookkeeping
		wantAction  ActionType
		wantDelay   time.Duration
		wantThen    SyncType
		wantLaunchN int
	}{
		{
			name:        "AppLaunch first launch is full",
			trigger:     TriggerAppLaunch,
			bk:          Bookkeeping{},
			wantAction:  ActionFull,
			wantLaunchN: 1,
		},
		{
			name:        "AppLaunch without successful sync is full",
			trigger:     TriggerAppLaunch,
			bk:          Bookkeeping{LastFullSync: ago(time.Hour), LaunchCount: 2},
			wantAction:  ActionFull,
			wantLaunchN: 3,
		},
		{
			name:        "AppLaunch every tenth launch is full",
			trigger:     TriggerAppLaunch,
			bk:          Bookkeeping{LastFullSync: ago(time.Hour), LastSuccessfulSync: ago(time.Minute), LaunchCount: 9},
			wantAction:  ActionFull,
			wantLaunchN: 10,
		},
		{
			name:        "AppLaunch recent success skips",
			trigger:     TriggerAppLaunch,
			bk:          Bookkeeping{LastFullSync: ago(time.Hour), LastSuccessfulSync: ago(10 * time.Minute), LaunchCount: 3},
			wantAction:  ActionSkip,
			wantLaunchN: 4,
		},
		{
			name:        "AppLaunch stale defers incremental",
			trigger:     TriggerAppLaunch,
			bk:          Bookkeeping{LastFullSync: ago(2 * time.Hour), LastSuccessfulSync: ago(45 * time.Minute), LaunchCount: 3},
			wantAction:  ActionDeferred,
			wantDelay:   3 * time.Second,
			wantThen:    SyncIncremental,
			wantLaunchN: 4,
		},
		{
			name:       "UserLogin recent defers incremental",
			trigger:    TriggerUserLogin,
			bk:         Bookkeeping{LastSuccessfulSync: ago(2 * time.Minute)},
			wantAction: ActionDeferred,
			wantDelay:  2 * time.Second,
			wantThen:   SyncIncremental,
		},
		{
			name:       "UserLogin stale defers full",
			trigger:    TriggerUserLogin,
			bk:         Bookkeeping{LastSuccessfulSync: ago(6 * time.Minute)},
			wantAction: ActionDeferred,
			wantDelay:  5 * time.Second,
			wantThen:   SyncFull,
		},
		{
			name:       "UserLogin never synced defers full",
			trigger:    TriggerUserLogin,
			wantAction: ActionDeferred,
			wantDelay:  5 * time.Second,
			wantThen:   SyncFull,
		},
		{
			name:       "GameCompletion within a minute skips",
			trigger:    TriggerGameCompletion,
			bk:         Bookkeeping{LastSuccessfulSync: ago(30 * time.Second)},
			wantAction: ActionSkip,
		},
		{
			name:       "GameCompletion otherwise incremental",
			trigger:    TriggerGameCompletion,
			bk:         Bookkeeping{LastSuccessfulSync: ago(2 * time.Minute)},
			wantAction: ActionIncremental,
		},
		{
			name:       "Manual recent is incremental",
			trigger:    TriggerManual,
			bk:         Bookkeeping{LastSuccessfulSync: ago(30 * time.Second)},
			wantAction: ActionIncremental,
		},
		{
			name:       "Manual stale is full",
			trigger:    TriggerManual,
			bk:         Bookkeeping{LastSuccessfulSync: ago(2 * time.Minute)},
			wantAction: ActionFull,
		},
		{
			name:       "Background within an hour skips",
			trigger:    TriggerBackground,
			bk:         Bookkeeping{LastSuccessfulSync: ago(59 * time.Minute)},
			wantAction: ActionSkip,
		},
		{
			name:       "Background stale is incremental",
			trigger:    TriggerBackground,
			bk:         Bookkeeping{LastSuccessfulSync: ago(2 * time.Hour)},
			wantAction: ActionIncremental,
		},
		{
			name:       "Unknown trigger skips",
			trigger:    Trigger("bogus"),
			wantAction: ActionSkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, next := Select(tt.trigger, tt.bk, now, policy)

			assert.Equal(t, tt.wantAction, decision.Action)
			assert.NotEmpty(t, decision.Reason)
			assert.Equal(t, tt.wantDelay, decision.Delay)
			assert.Equal(t, tt.wantThen, decision.Then)
			assert.Equal(t, tt.wantLaunchN, next.LaunchCount)
			assert.Equal(t, tt.bk.LastSuccessfulSync, next.LastSuccessfulSync)
			assert.Equal(t, tt.bk.LastFullSync, next.LastFullSync)
		})
	}
}

func TestSelect_CustomPolicy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultConfig()
	policy.BackgroundSkipWindow = 10 * time.Minute

	decision, _ := Select(TriggerBackground, Bookkeeping{LastSuccessfulSync: now.Add(-20 * time.Minute)}, now, policy)
	assert.Equal(t, ActionIncremental, decision.Action)
}

func TestDecision_SyncType(t *testing.T) {
	assert.Equal(t, SyncFull, Decision{Action: ActionFull}.SyncType())
	assert.Equal(t, SyncIncremental, Decision{Action: ActionIncremental}.SyncType())
	assert.Equal(t, SyncFull, Decision{Action: ActionDeferred, Then: SyncFull}.SyncType())
	assert.Equal(t, SyncType(""), Decision{Action: ActionSkip}.SyncType())
}

func TestParseTrigger(t *testing.T) {
	for _, input := range []string{"manual", "MANUAL", " manual "} {
		got, err := ParseTrigger(input)
		assert.NoError(t, err)
		assert.Equal(t, TriggerManual, got)
	}

	got, err := ParseTrigger("appLaunch")
	assert.NoError(t, err)
	assert.Equal(t, TriggerAppLaunch, got)

	got, err = ParseTrigger("game-completion")
	assert.NoError(t, err)
	assert.Equal(t, TriggerGameCompletion, got)

	_, err = ParseTrigger("sometimes")
	assert.Error(t, err)
}
