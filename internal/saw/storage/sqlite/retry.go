package sqlite

import (
	"strings"
	"time"
)

// retryOnBusy retries a write when sqlite reports the database is locked.
// WAL mode makes this rare, but the monitor server and batch tools can
// still collide on the same file. Non-busy errors fail immediately.
func retryOnBusy(fn func() error) error {
	const maxRetries = 5
	backoff := 10 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if err == nil || !isBusyError(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
