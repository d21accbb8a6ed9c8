package models

import (
	"testing"
	"time"
)

func TestSyncStatus(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name      string
		status    AssignmentStatus
		completed *time.Time
		want      AssignmentStatus
	}{
		{"completed date forces completed", StatusPending, &now, StatusCompleted},
		{"completed date overrides in_progress", StatusInProgress, &now, StatusCompleted},
		{"empty status defaults to pending", "", nil, StatusPending},
		{"stale completed drops to pending", StatusCompleted, nil, StatusPending},
		{"explicit in_progress survives", StatusInProgress, nil, StatusInProgress},
		{"pending stays pending", StatusPending, nil, StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Assignment{Status: tc.status, CompletedDate: tc.completed}
			a.SyncStatus()
			if a.Status != tc.want {
				t.Errorf("status: got %q, want %q", a.Status, tc.want)
			}
		})
	}
}

func TestCompleted(t *testing.T) {
	a := Assignment{Status: StatusCompleted}
	if !a.Completed() {
		t.Error("completed status must report Completed")
	}
	a.Status = StatusInProgress
	if a.Completed() {
		t.Error("in_progress must not report Completed")
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []AssignmentStatus{StatusPending, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q must be valid", s)
		}
	}
	if AssignmentStatus("done").Valid() {
		t.Error("unknown status must be invalid")
	}
}
