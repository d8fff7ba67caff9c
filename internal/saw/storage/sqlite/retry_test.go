package sqlite

import (
	"errors"
	"testing"
)

func TestRetryOnBusyEventualSuccess(t *testing.T) {
	calls := 0
	err := retryOnBusy(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryOnBusyGivesUp(t *testing.T) {
	calls := 0
	busy := errors.New("SQLITE_BUSY")
	err := retryOnBusy(func() error {
		calls++
		return busy
	})
	if err == nil {
		t.Fatal("expected error when the database never unlocks")
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
}

func TestRetryOnBusyFailsFastOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	err := retryOnBusy(func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: non-busy errors must not be retried", calls)
	}
}

func TestIsBusyError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY"), true},
		{errors.New("database is locked"), true},
		{errors.New("constraint failed"), false},
	}
	for _, tt := range tests {
		if got := isBusyError(tt.err); got != tt.want {
			t.Errorf("isBusyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
